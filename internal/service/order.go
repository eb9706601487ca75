package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fooddelivery/internal/model"
)

// DefaultETATimeout bounds the delivery backend ETA lookup during order
// creation.
const DefaultETATimeout = 3 * time.Second

// OrderService owns order creation, status transitions, cancellation and
// per-user statistics.
type OrderService struct {
	orders  OrderRepository
	users   UserRepository
	gateway DeliveryGateway
	events  EventPublisher
	tasks   TaskRunner
	store   StoreAvailability
	now     func() time.Time

	etaTimeout time.Duration
}

func NewOrderService(
	orders OrderRepository,
	users UserRepository,
	gateway DeliveryGateway,
	events EventPublisher,
	tasks TaskRunner,
	store StoreAvailability,
) *OrderService {
	if events == nil {
		events = NoopPublisher
	}
	return &OrderService{
		orders:  orders,
		users:   users,
		gateway: gateway,
		events:  events,
		tasks:   tasks,
		store:   store,
		now:     time.Now,

		etaTimeout: DefaultETATimeout,
	}
}

// SetETATimeout changes how long order creation waits for an ETA estimate.
func (s *OrderService) SetETATimeout(d time.Duration) {
	if d > 0 {
		s.etaTimeout = d
	}
}

// SetClock replaces the time source used to stamp orders.
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *OrderService) CreateOrder(ctx context.Context, ownerID string, req model.CreateOrderRequest) (*model.Order, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", ownerID, err)
	}

	subtotal := model.SubtotalOf(req.Items)
	if req.Subtotal != nil && !req.Subtotal.IsZero() {
		subtotal = *req.Subtotal
	}

	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCOD
	}

	items := make([]model.OrderItem, len(req.Items))
	copy(items, req.Items)

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		UserEmail:       user.Email,
		RestaurantID:    req.RestaurantID,
		RestaurantName:  req.RestaurantName,
		Items:           items,
		Subtotal:        subtotal,
		Discount:        req.Discount,
		DeliveryFee:     req.DeliveryFee,
		Total:           req.Total,
		Status:          model.StatusPlaced,
		ETA:             s.resolveETA(ctx, req),
		DeliveryAddress: req.DeliveryAddress,
		Payment: model.Payment{
			Method: method,
			Status: model.PaymentPending,
		},
		PlacedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	slog.Info("order placed", "order", order.ID, "user", order.UserID, "total", order.Total.String(), "eta", order.ETA)

	assignment := model.DeliveryAssignment{
		OrderID:         order.ID,
		RestaurantID:    order.RestaurantID,
		DeliveryAddress: order.DeliveryAddress,
	}
	s.tasks.Go("assign delivery "+order.ID, func(ctx context.Context) error {
		return s.gateway.AssignDelivery(ctx, assignment)
	})
	s.publish(model.NewOrderEvent(model.EventOrderPlaced, order, "", now))

	return order, nil
}

// resolveETA asks the delivery backend for an estimate and falls back to the
// caller's value or the default when the backend cannot answer.
func (s *OrderService) resolveETA(ctx context.Context, req model.CreateOrderRequest) int {
	eta := model.DefaultETAMinutes
	if req.ETA != nil && *req.ETA > 0 {
		eta = *req.ETA
	}

	ctx, cancel := context.WithTimeout(ctx, s.etaTimeout)
	defer cancel()

	estimated, err := s.gateway.EstimateETA(ctx, req.RestaurantID, req.DeliveryAddress)
	if err != nil {
		slog.Warn("eta calculation failed, using fallback", "restaurant", req.RestaurantID, "eta", eta, "error", err)
		return eta
	}
	if estimated > 0 {
		return estimated
	}
	return eta
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID, requesterID string) (*model.Order, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order.UserID != requesterID {
		return nil, fmt.Errorf("order %s: %w", orderID, model.ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, ownerID string, filter model.OrderFilter) (*model.OrderPage, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{{Field: "status", Message: "unknown order status"}}}
	}
	filter = filter.Normalize()

	orders, total, err := s.orders.ListByUser(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &model.OrderPage{
		Orders: orders,
		Pagination: model.Pagination{
			Total:   total,
			Limit:   filter.Limit,
			Skip:    filter.Skip,
			HasMore: filter.Skip+len(orders) < total,
		},
	}, nil
}

// UpdateOrderStatus moves a non-terminal order to any listed status. The
// requester is recorded but not checked against the owner.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, requesterID string) (*model.Order, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}
	if !status.Valid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{{Field: "status", Message: "unknown order status"}}}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, model.ErrInvalidTransition)
	}

	prev := order.Status
	now := s.now().UTC()
	order.Status = status
	order.UpdatedAt = now
	switch status {
	case model.StatusDelivered:
		order.DeliveredAt = &now
		order.Payment.Status = model.PaymentCompleted
	case model.StatusCancelled:
		order.CancelledAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, order, prev); err != nil {
		return nil, fmt.Errorf("update order %s status: %w", orderID, err)
	}
	slog.Info("order status updated", "order", order.ID, "from", prev, "to", status, "requester", requesterID)

	id := order.ID
	s.tasks.Go("update delivery status "+id, func(ctx context.Context) error {
		return s.gateway.UpdateDeliveryStatus(ctx, id, status)
	})
	s.publish(model.NewOrderEvent(model.EventOrderStatusChanged, order, prev, now))

	return order, nil
}

// CancelOrder cancels the requester's own non-terminal order. The delivery
// backend is not notified.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, requesterID, reason string) (*model.Order, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order.UserID != requesterID {
		return nil, fmt.Errorf("order %s: %w", orderID, model.ErrForbidden)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("order %s cannot be cancelled: %w", orderID, model.ErrInvalidTransition)
	}

	prev := order.Status
	now := s.now().UTC()
	order.Status = model.StatusCancelled
	order.CancelledAt = &now
	order.CancellationReason = reason
	order.UpdatedAt = now

	if err := s.orders.UpdateStatus(ctx, order, prev); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	slog.Info("order cancelled", "order", order.ID, "from", prev, "reason", reason)

	s.publish(model.NewOrderEvent(model.EventOrderCancelled, order, prev, now))
	return order, nil
}

func (s *OrderService) GetOrderStats(ctx context.Context, ownerID string) (*model.OrderStats, error) {
	if !s.store.StoreAvailable() {
		return nil, model.ErrStoreUnavailable
	}

	stats, err := s.orders.Stats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	if stats.ByStatus == nil {
		stats.ByStatus = []model.StatusStat{}
	}
	return stats, nil
}

func (s *OrderService) publish(event model.OrderEvent) {
	s.tasks.Go("publish "+event.Type+" "+event.OrderID, func(ctx context.Context) error {
		if err := s.events.PublishOrderEvent(ctx, event); err != nil {
			return fmt.Errorf("publish order event: %w", err)
		}
		return nil
	})
}

// IsClientError reports whether err is one of the classified order or
// account failures rather than an infrastructure fault.
func IsClientError(err error) bool {
	for _, target := range []error{
		model.ErrNotFound,
		model.ErrForbidden,
		model.ErrConflict,
		model.ErrValidation,
		model.ErrInvalidTransition,
		model.ErrUnauthorized,
		model.ErrAccountInactive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
