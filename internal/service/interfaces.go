package service

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"fooddelivery/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, filter model.OrderFilter) ([]model.Order, int, error)
	// UpdateStatus writes the order's status fields only if the stored status
	// still equals expected; otherwise it returns model.ErrConflict.
	UpdateStatus(ctx context.Context, order *model.Order, expected model.OrderStatus) error
	Stats(ctx context.Context, userID string) (*model.OrderStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)
	SaveAddresses(ctx context.Context, user *model.User) error
}

// DeliveryGateway is the order-facing part of the delivery backend.
type DeliveryGateway interface {
	EstimateETA(ctx context.Context, restaurantID string, addr model.DeliveryAddress) (int, error)
	AssignDelivery(ctx context.Context, a model.DeliveryAssignment) error
	UpdateDeliveryStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

type CatalogGateway interface {
	GetRestaurants(ctx context.Context, filters url.Values) (json.RawMessage, error)
	GetRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error)
	GetMenu(ctx context.Context, restaurantID string) (json.RawMessage, error)
}

type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event model.OrderEvent) error
}

// TaskRunner starts work the caller does not wait for.
type TaskRunner interface {
	Go(name string, fn func(ctx context.Context) error)
}

// StoreAvailability reports whether the persistent store can serve requests.
type StoreAvailability interface {
	StoreAvailable() bool
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }

// NoopPublisher is used when event publishing is disabled.
var NoopPublisher EventPublisher = noopPublisher{}
