package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const RoleCustomer = "customer"

type Address struct {
	ID        string `json:"id"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	Addresses    []Address `json:"addresses"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AddAddress appends a to the address book and returns the stored copy.
// The first address, or one flagged default, becomes the only default.
func (u *User) AddAddress(in AddressInput) Address {
	addr := Address{
		ID:        uuid.NewString(),
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		Pincode:   in.Pincode,
		IsDefault: in.IsDefault,
	}
	if len(u.Addresses) == 0 || addr.IsDefault {
		u.clearDefault()
		addr.IsDefault = true
	}
	u.Addresses = append(u.Addresses, addr)
	return addr
}

func (u *User) UpdateAddress(id string, patch AddressPatch) error {
	idx := u.addressIndex(id)
	if idx < 0 {
		return ErrNotFound
	}

	addr := &u.Addresses[idx]
	if patch.Line1 != nil {
		addr.Line1 = *patch.Line1
	}
	if patch.Line2 != nil {
		addr.Line2 = *patch.Line2
	}
	if patch.City != nil {
		addr.City = *patch.City
	}
	if patch.State != nil {
		addr.State = *patch.State
	}
	if patch.Pincode != nil {
		addr.Pincode = *patch.Pincode
	}
	if patch.IsDefault != nil {
		if *patch.IsDefault {
			u.clearDefault()
		}
		u.Addresses[idx].IsDefault = *patch.IsDefault
	}
	return nil
}

func (u *User) RemoveAddress(id string) error {
	idx := u.addressIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	u.Addresses = append(u.Addresses[:idx], u.Addresses[idx+1:]...)
	return nil
}

func (u *User) addressIndex(id string) int {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *User) clearDefault() {
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = false
	}
}

type AddressInput struct {
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault"`
}

func (in AddressInput) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(in.Line1) == "" {
		v.add("line1", "address line 1 is required")
	}
	if strings.TrimSpace(in.City) == "" {
		v.add("city", "city is required")
	}
	if strings.TrimSpace(in.Pincode) == "" {
		v.add("pincode", "pincode is required")
	}
	return v.orNil()
}

type AddressPatch struct {
	Line1     *string `json:"line1,omitempty"`
	Line2     *string `json:"line2,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Pincode   *string `json:"pincode,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

func (p AddressPatch) Validate() error {
	v := &ValidationError{}
	required := []struct {
		field string
		value *string
	}{
		{"line1", p.Line1},
		{"city", p.City},
		{"pincode", p.Pincode},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			v.add(r.field, r.field+" must not be empty")
		}
	}
	return v.orNil()
}

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Normalize trims the name and lower-cases the email.
func (r SignupRequest) Normalize() SignupRequest {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	return r
}

func (r SignupRequest) Validate() error {
	v := &ValidationError{}
	if !validEmail(r.Email) {
		v.add("email", "valid email is required")
	}
	if n := len([]rune(strings.TrimSpace(r.Name))); n < 2 || n > 50 {
		v.add("name", "name must be 2-50 characters")
	}
	if len(r.Password) < 6 {
		v.add("password", "password must be at least 6 characters")
	}
	return v.orNil()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	v := &ValidationError{}
	if !validEmail(r.Email) {
		v.add("email", "valid email is required")
	}
	if r.Password == "" {
		v.add("password", "password is required")
	}
	return v.orNil()
}

// ProfileUpdate holds the only profile fields a user may change.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (p ProfileUpdate) Validate() error {
	v := &ValidationError{}
	if p.Name != nil {
		if n := len([]rune(strings.TrimSpace(*p.Name))); n < 2 || n > 50 {
			v.add("name", "name must be 2-50 characters")
		}
	}
	return v.orNil()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == strings.TrimSpace(s)
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
