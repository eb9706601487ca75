package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fooddelivery/internal/model"
)

const orderColumns = `id, user_id, user_email, restaurant_id, restaurant_name, items,
	subtotal, discount, delivery_fee, total, status, eta, delivery_address,
	payment_method, payment_status, transaction_id, placed_at, delivered_at,
	cancelled_at, cancellation_reason, created_at, updated_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	addr, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		o.ID, o.UserID, o.UserEmail, o.RestaurantID, o.RestaurantName, items,
		o.Subtotal, o.Discount, o.DeliveryFee, o.Total, string(o.Status), o.ETA, addr,
		string(o.Payment.Method), string(o.Payment.Status), o.Payment.TransactionID,
		o.PlacedAt, o.DeliveredAt, o.CancelledAt, o.CancellationReason, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string, filter model.OrderFilter) ([]model.Order, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, filter.Limit, filter.Skip)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE `+cond+`
		ORDER BY placed_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus writes the status fields only while the stored status still
// equals expected.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *model.Order, expected model.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, delivered_at = $3, cancelled_at = $4,
		    cancellation_reason = $5, updated_at = $6
		WHERE id = $7 AND status = $8
	`,
		string(o.Status), string(o.Payment.Status), o.DeliveredAt, o.CancelledAt,
		o.CancellationReason, o.UpdatedAt, o.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %s no longer %s: %w", o.ID, expected, model.ErrConflict)
	}
	return nil
}

func (r *OrderRepository) Stats(ctx context.Context, userID string) (*model.OrderStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE user_id = $1
		GROUP BY status
		ORDER BY status
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := &model.OrderStats{TotalSpent: decimal.Zero, ByStatus: []model.StatusStat{}}
	for rows.Next() {
		var (
			st     model.StatusStat
			status string
		)
		if err := rows.Scan(&status, &st.Count, &st.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.Status = model.OrderStatus(status)
		stats.TotalOrders += st.Count
		if st.Status == model.StatusDelivered {
			stats.TotalSpent = stats.TotalSpent.Add(st.TotalAmount)
		}
		stats.ByStatus = append(stats.ByStatus, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o                       model.Order
		items, addr             []byte
		status, method, payment string
		deliveredAt, cancelled  sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.UserEmail, &o.RestaurantID, &o.RestaurantName, &items,
		&o.Subtotal, &o.Discount, &o.DeliveryFee, &o.Total, &status, &o.ETA, &addr,
		&method, &payment, &o.Payment.TransactionID, &o.PlacedAt, &deliveredAt,
		&cancelled, &o.CancellationReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(addr, &o.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	o.Status = model.OrderStatus(status)
	o.Payment.Method = model.PaymentMethod(method)
	o.Payment.Status = model.PaymentStatus(payment)
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	if cancelled.Valid {
		t := cancelled.Time
		o.CancelledAt = &t
	}
	return &o, nil
}
