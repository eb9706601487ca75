package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddelivery/internal/model"
)

var userRowColumns = []string{"id", "email", "name", "phone", "password_hash", "role", "is_active", "created_at", "updated_at"}

var addressRowColumns = []string{"id", "line1", "line2", "city", "state", "pincode", "is_default"}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{ID: userID, Email: "asha@example.com"})

	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()
	user := &model.User{
		ID:           userID,
		Email:        "asha@example.com",
		Name:         "Asha",
		PasswordHash: []byte("hash"),
		Role:         model.RoleCustomer,
		IsActive:     true,
		Addresses:    []model.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(userID, "asha@example.com", "Asha", "", []byte("hash"), "customer", true, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), user))
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(userID, "asha@example.com", "Asha", "", []byte("hash"), "customer", true, now, now))
	mock.ExpectQuery("FROM addresses").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(addressRowColumns).
			AddRow("a1", "Home", "", "Pune", "MH", "411001", true).
			AddRow("a2", "Work", "Floor 3", "Pune", "MH", "411002", false))

	user, err := repo.GetByEmail(context.Background(), "asha@example.com")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, []byte("hash"), user.PasswordHash)
	require.Len(t, user.Addresses, 2)
	assert.True(t, user.Addresses[0].IsDefault)
	assert.Equal(t, "Floor 3", user.Addresses[1].Line2)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("who@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByEmail(context.Background(), "who@example.com")

	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_UpdateProfilePhoneOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()
	phone := "+91 98765 43210"

	mock.ExpectExec("UPDATE users SET phone = \\$1, updated_at = \\$2 WHERE id = \\$3").
		WithArgs(phone, sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(userID, "asha@example.com", "Asha", phone, []byte("hash"), "customer", true, now, now))
	mock.ExpectQuery("FROM addresses").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(addressRowColumns))

	user, err := repo.UpdateProfile(context.Background(), userID, model.ProfileUpdate{Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, phone, user.Phone)
	assert.NotNil(t, user.Addresses)
}

func TestUserRepository_UpdateProfileMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	name := "Asha"

	mock.ExpectExec("UPDATE users SET name = \\$1, updated_at = \\$2 WHERE id = \\$3").
		WithArgs(name, sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateProfile(context.Background(), userID, model.ProfileUpdate{Name: &name})

	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_SaveAddresses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	seen := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET updated_at = \\$1 WHERE id = \\$2 AND updated_at = \\$3").
		WithArgs(sqlmock.AnyArg(), userID, seen).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM addresses WHERE user_id = \\$1").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs("a1", userID, "Home", "", "Pune", "", "411001", false, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs("a2", userID, "Work", "", "Pune", "", "411002", true, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &model.User{ID: userID, UpdatedAt: seen, Addresses: []model.Address{
		{ID: "a1", Line1: "Home", City: "Pune", Pincode: "411001"},
		{ID: "a2", Line1: "Work", City: "Pune", Pincode: "411002", IsDefault: true},
	}}
	err := repo.SaveAddresses(context.Background(), user)

	require.NoError(t, err)
	assert.True(t, user.UpdatedAt.After(seen))
}

func TestUserRepository_SaveAddressesStaleBook(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	seen := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET updated_at").
		WithArgs(sqlmock.AnyArg(), userID, seen).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	user := &model.User{ID: userID, UpdatedAt: seen, Addresses: []model.Address{{ID: "a1", Line1: "Home", IsDefault: true}}}
	err := repo.SaveAddresses(context.Background(), user)

	assert.ErrorIs(t, err, model.ErrConflict)
	assert.Equal(t, seen, user.UpdatedAt)
}

func TestUserRepository_SaveAddressesSecondDefault(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM addresses").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO addresses").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_addresses_one_default"})
	mock.ExpectRollback()

	err := repo.SaveAddresses(context.Background(), &model.User{ID: userID, Addresses: []model.Address{{ID: "a1", Line1: "Home", IsDefault: true}}})

	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestUserRepository_SaveAddressesRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM addresses").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO addresses").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.SaveAddresses(context.Background(), &model.User{ID: userID, Addresses: []model.Address{{ID: "a1", Line1: "Home"}}})

	assert.ErrorIs(t, err, assert.AnError)
}
