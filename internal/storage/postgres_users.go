package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"fooddelivery/internal/model"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, phone, password_hash, role, is_active, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Email, u.Name, u.Phone, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email %s: %w", u.Email, model.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err = insertAddresses(ctx, tx, u.ID, u.Addresses); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value).
		Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	u.Addresses, err = r.addresses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) addresses(ctx context.Context, userID string) ([]model.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, line1, line2, city, state, pincode, is_default
		FROM addresses
		WHERE user_id = $1
		ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	addrs := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.Line1, &a.Line2, &a.City, &a.State, &a.Pincode, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addrs = append(addrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return addrs, nil
}

// UpdateProfile changes only name and phone; other fields of the update are
// never reachable from here.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}

	var (
		sets []string
		args []any
	)
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, "name = $"+strconv.Itoa(len(args)))
	}
	if update.Phone != nil {
		args = append(args, *update.Phone)
		sets = append(sets, "phone = $"+strconv.Itoa(len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, "updated_at = $"+strconv.Itoa(len(args)))
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return nil, model.ErrNotFound
	}

	return r.getBy(ctx, "id", id)
}

// SaveAddresses replaces the user's whole address book, preserving order.
// The write applies only while the stored updated_at still equals
// u.UpdatedAt, so a concurrent edit of the same book fails with ErrConflict.
// On success u.UpdatedAt carries the new stamp.
func (r *UserRepository) SaveAddresses(ctx context.Context, u *model.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(u.UpdatedAt) {
		now = u.UpdatedAt.Add(time.Microsecond)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET updated_at = $1 WHERE id = $2 AND updated_at = $3`, now, u.ID, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("address book of %s changed: %w", u.ID, model.ErrConflict)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM addresses WHERE user_id = $1`, u.ID); err != nil {
		return fmt.Errorf("delete addresses: %w", err)
	}
	if err = insertAddresses(ctx, tx, u.ID, u.Addresses); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("address book of %s: %w", u.ID, model.ErrConflict)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	u.UpdatedAt = now
	return nil
}

func insertAddresses(ctx context.Context, tx *sql.Tx, userID string, addrs []model.Address) error {
	for i, a := range addrs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO addresses (id, user_id, line1, line2, city, state, pincode, is_default, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, a.ID, userID, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.IsDefault, i)
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
	}
	return nil
}
