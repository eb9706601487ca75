package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fooddelivery/internal/model"
)

// AccountService owns signup, login, profile and the address book.
type AccountService struct {
	users    UserRepository
	store    StoreAvailability
	hashCost int
}

func NewAccountService(users UserRepository, store StoreAvailability) *AccountService {
	return &AccountService{
		users:    users,
		store:    store,
		hashCost: bcrypt.DefaultCost,
	}
}

// SetHashCost overrides the bcrypt cost used for new passwords.
func (s *AccountService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *AccountService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("user already exists with this email: %w", model.ErrConflict)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		IsActive:     true,
		Addresses:    []model.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	slog.Info("user registered", "user", user.ID)
	return user, nil
}

// Authenticate checks the password before the active flag so that a wrong
// password never reveals whether an account is deactivated.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, model.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, model.ErrAccountInactive
	}

	return user, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", userID, err)
	}
	return user, nil
}

func (s *AccountService) AddAddress(ctx context.Context, userID string, in model.AddressInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.editAddresses(ctx, userID, func(u *model.User) error {
		u.AddAddress(in)
		return nil
	})
}

func (s *AccountService) UpdateAddress(ctx context.Context, userID, addressID string, patch model.AddressPatch) (*model.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.editAddresses(ctx, userID, func(u *model.User) error {
		if err := u.UpdateAddress(addressID, patch); err != nil {
			return fmt.Errorf("address %s: %w", addressID, err)
		}
		return nil
	})
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, addressID string) (*model.User, error) {
	return s.editAddresses(ctx, userID, func(u *model.User) error {
		if err := u.RemoveAddress(addressID); err != nil {
			return fmt.Errorf("address %s: %w", addressID, err)
		}
		return nil
	})
}

// editAddresses loads the user, applies edit to the address book and stores
// the whole book back. A book changed by someone else in between yields
// ErrConflict.
func (s *AccountService) editAddresses(ctx context.Context, userID string, edit func(u *model.User) error) (*model.User, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if err := edit(user); err != nil {
		return nil, err
	}
	if err := s.users.SaveAddresses(ctx, user); err != nil {
		return nil, fmt.Errorf("save addresses: %w", err)
	}
	return user, nil
}
