package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fooddelivery/internal/mocks"
	"fooddelivery/internal/model"
	"fooddelivery/internal/service"
)

func newAccountService(t *testing.T) (*service.AccountService, *mocks.UserRepository, *mocks.Availability) {
	t.Helper()
	users := mocks.NewUserRepository(t)
	store := &mocks.Availability{}
	svc := service.NewAccountService(users, store)
	svc.SetHashCost(bcrypt.MinCost)
	return svc, users, store
}

func hashed(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestAccountService_Signup(t *testing.T) {
	svc, users, _ := newAccountService(t)
	users.On("GetByEmail", mock.Anything, "asha@example.com").Return(nil, model.ErrNotFound).Once()

	var created *model.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.User) }).
		Return(nil).Once()

	user, err := svc.Signup(context.Background(), model.SignupRequest{
		Email:    "  Asha@Example.com ",
		Name:     " Asha ",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Same(t, created, user)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotNil(t, user.Addresses)
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("secret1")))
}

func TestAccountService_SignupErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     model.SignupRequest
		prepare func(users *mocks.UserRepository, store *mocks.Availability)
		wantErr error
	}{
		{
			name:    "bad email",
			req:     model.SignupRequest{Email: "nope", Name: "Asha", Password: "secret1"},
			prepare: func(*mocks.UserRepository, *mocks.Availability) {},
			wantErr: model.ErrValidation,
		},
		{
			name:    "short password",
			req:     model.SignupRequest{Email: "asha@example.com", Name: "Asha", Password: "123"},
			prepare: func(*mocks.UserRepository, *mocks.Availability) {},
			wantErr: model.ErrValidation,
		},
		{
			name:    "short name",
			req:     model.SignupRequest{Email: "asha@example.com", Name: " A ", Password: "secret1"},
			prepare: func(*mocks.UserRepository, *mocks.Availability) {},
			wantErr: model.ErrValidation,
		},
		{
			name: "duplicate email",
			req:  model.SignupRequest{Email: "asha@example.com", Name: "Asha", Password: "secret1"},
			prepare: func(users *mocks.UserRepository, _ *mocks.Availability) {
				users.On("GetByEmail", mock.Anything, "asha@example.com").
					Return(&model.User{ID: "u1"}, nil).Once()
			},
			wantErr: model.ErrConflict,
		},
		{
			name: "store degraded",
			req:  model.SignupRequest{Email: "asha@example.com", Name: "Asha", Password: "secret1"},
			prepare: func(_ *mocks.UserRepository, store *mocks.Availability) {
				store.Down = true
			},
			wantErr: model.ErrStoreUnavailable,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, users, store := newAccountService(t)
			testCase.prepare(users, store)

			user, err := svc.Signup(context.Background(), testCase.req)

			assert.Nil(t, user)
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	active := &model.User{ID: "u1", Email: "asha@example.com", PasswordHash: hashed(t, "secret1"), IsActive: true}
	inactive := &model.User{ID: "u2", Email: "ravi@example.com", PasswordHash: hashed(t, "secret2"), IsActive: false}

	tests := []struct {
		name     string
		email    string
		password string
		stored   *model.User
		repoErr  error
		wantErr  error
	}{
		{name: "valid", email: "ASHA@example.com", password: "secret1", stored: active},
		{name: "wrong password", email: "asha@example.com", password: "nope", stored: active, wantErr: model.ErrUnauthorized},
		{name: "unknown email", email: "who@example.com", repoErr: model.ErrNotFound, wantErr: model.ErrUnauthorized},
		{name: "inactive", email: "ravi@example.com", password: "secret2", stored: inactive, wantErr: model.ErrAccountInactive},
		{name: "inactive with wrong password", email: "ravi@example.com", password: "nope", stored: inactive, wantErr: model.ErrUnauthorized},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, users, _ := newAccountService(t)
			users.On("GetByEmail", mock.Anything, mock.AnythingOfType("string")).
				Return(testCase.stored, testCase.repoErr).Once()

			user, err := svc.Authenticate(context.Background(), testCase.email, testCase.password)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.stored.ID, user.ID)
		})
	}
}

func TestAccountService_UpdateProfile(t *testing.T) {
	svc, users, _ := newAccountService(t)
	name := "  Asha Rao "
	phone := "+91 98765 43210"
	trimmed := "Asha Rao"

	users.On("UpdateProfile", mock.Anything, "u1", model.ProfileUpdate{Name: &trimmed, Phone: &phone}).
		Return(&model.User{ID: "u1", Name: trimmed, Phone: phone}, nil).Once()

	user, err := svc.UpdateProfile(context.Background(), "u1", model.ProfileUpdate{Name: &name, Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.Name)
}

func TestAccountService_UpdateProfileRejectsShortName(t *testing.T) {
	svc, _, _ := newAccountService(t)
	name := "A"

	_, err := svc.UpdateProfile(context.Background(), "u1", model.ProfileUpdate{Name: &name})

	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAccountService_AddFirstAddressBecomesDefault(t *testing.T) {
	svc, users, _ := newAccountService(t)
	users.On("GetByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Addresses: []model.Address{}}, nil).Once()
	users.On("SaveAddresses", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == "u1" && len(u.Addresses) == 1 && u.Addresses[0].IsDefault && u.Addresses[0].ID != ""
	})).Return(nil).Once()

	user, err := svc.AddAddress(context.Background(), "u1", model.AddressInput{
		Line1: "12 MG Road", City: "Pune", Pincode: "411001", IsDefault: false,
	})

	require.NoError(t, err)
	require.Len(t, user.Addresses, 1)
	assert.True(t, user.Addresses[0].IsDefault)
}

func TestAccountService_AddDefaultAddressClearsOthers(t *testing.T) {
	svc, users, _ := newAccountService(t)
	users.On("GetByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Addresses: []model.Address{
		{ID: "a1", Line1: "Home", City: "Pune", Pincode: "411001", IsDefault: true},
		{ID: "a2", Line1: "Work", City: "Pune", Pincode: "411002"},
	}}, nil).Once()
	users.On("SaveAddresses", mock.Anything, mock.Anything).Return(nil).Once()

	user, err := svc.AddAddress(context.Background(), "u1", model.AddressInput{
		Line1: "Gym", City: "Pune", Pincode: "411003", IsDefault: true,
	})

	require.NoError(t, err)
	require.Len(t, user.Addresses, 3)
	defaults := 0
	for _, addr := range user.Addresses {
		if addr.IsDefault {
			defaults++
			assert.Equal(t, "Gym", addr.Line1)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestAccountService_UpdateAddress(t *testing.T) {
	svc, users, _ := newAccountService(t)
	users.On("GetByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Addresses: []model.Address{
		{ID: "a1", Line1: "Home", City: "Pune", Pincode: "411001", IsDefault: true},
		{ID: "a2", Line1: "Work", City: "Pune", Pincode: "411002"},
	}}, nil).Once()
	users.On("SaveAddresses", mock.Anything, mock.Anything).Return(nil).Once()

	yes := true
	city := "Mumbai"
	user, err := svc.UpdateAddress(context.Background(), "u1", "a2", model.AddressPatch{City: &city, IsDefault: &yes})

	require.NoError(t, err)
	assert.False(t, user.Addresses[0].IsDefault)
	assert.True(t, user.Addresses[1].IsDefault)
	assert.Equal(t, "Mumbai", user.Addresses[1].City)
	assert.Equal(t, "Work", user.Addresses[1].Line1)
}

func TestAccountService_AddressErrors(t *testing.T) {
	book := func() *model.User {
		return &model.User{ID: "u1", Addresses: []model.Address{{ID: "a1", Line1: "Home", City: "Pune", Pincode: "411001", IsDefault: true}}}
	}
	empty := ""

	tests := []struct {
		name    string
		call    func(svc *service.AccountService) error
		loads   bool
		wantErr error
	}{
		{
			name: "add without city",
			call: func(svc *service.AccountService) error {
				_, err := svc.AddAddress(context.Background(), "u1", model.AddressInput{Line1: "x", Pincode: "1"})
				return err
			},
			wantErr: model.ErrValidation,
		},
		{
			name: "update clears pincode",
			call: func(svc *service.AccountService) error {
				_, err := svc.UpdateAddress(context.Background(), "u1", "a1", model.AddressPatch{Pincode: &empty})
				return err
			},
			wantErr: model.ErrValidation,
		},
		{
			name: "update unknown address",
			call: func(svc *service.AccountService) error {
				_, err := svc.UpdateAddress(context.Background(), "u1", "zz", model.AddressPatch{})
				return err
			},
			loads:   true,
			wantErr: model.ErrNotFound,
		},
		{
			name: "delete unknown address",
			call: func(svc *service.AccountService) error {
				_, err := svc.DeleteAddress(context.Background(), "u1", "zz")
				return err
			},
			loads:   true,
			wantErr: model.ErrNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, users, _ := newAccountService(t)
			if testCase.loads {
				users.On("GetByID", mock.Anything, "u1").Return(book(), nil).Once()
			}

			err := testCase.call(svc)

			assert.ErrorIs(t, err, testCase.wantErr)
			users.AssertNotCalled(t, "SaveAddresses", mock.Anything, mock.Anything)
		})
	}
}

func TestAccountService_DeleteAddress(t *testing.T) {
	svc, users, _ := newAccountService(t)
	users.On("GetByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Addresses: []model.Address{
		{ID: "a1", Line1: "Home", City: "Pune", Pincode: "411001", IsDefault: true},
		{ID: "a2", Line1: "Work", City: "Pune", Pincode: "411002"},
	}}, nil).Once()
	users.On("SaveAddresses", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return assert.ObjectsAreEqual([]model.Address{{ID: "a2", Line1: "Work", City: "Pune", Pincode: "411002"}}, u.Addresses)
	})).Return(nil).Once()

	user, err := svc.DeleteAddress(context.Background(), "u1", "a1")

	require.NoError(t, err)
	assert.Len(t, user.Addresses, 1)
}

func TestAccountService_ConcurrentAddressEditConflicts(t *testing.T) {
	svc, users, _ := newAccountService(t)
	users.On("GetByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Addresses: []model.Address{}}, nil).Once()
	users.On("SaveAddresses", mock.Anything, mock.Anything).
		Return(fmt.Errorf("address book of u1 changed: %w", model.ErrConflict)).Once()

	user, err := svc.AddAddress(context.Background(), "u1", model.AddressInput{
		Line1: "12 MG Road", City: "Pune", Pincode: "411001",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, model.ErrConflict)
}
