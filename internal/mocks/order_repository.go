package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fooddelivery/internal/model"
)

// OrderRepository is a mock type for the OrderRepository type
type OrderRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, order
func (_m *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	ret := _m.Called(ctx, order)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.Order
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.Order); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Order)
	}
	return r0, ret.Error(1)
}

// ListByUser provides a mock function with given fields: ctx, userID, filter
func (_m *OrderRepository) ListByUser(ctx context.Context, userID string, filter model.OrderFilter) ([]model.Order, int, error) {
	ret := _m.Called(ctx, userID, filter)

	var r0 []model.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Order)
	}
	return r0, ret.Int(1), ret.Error(2)
}

// UpdateStatus provides a mock function with given fields: ctx, order, expected
func (_m *OrderRepository) UpdateStatus(ctx context.Context, order *model.Order, expected model.OrderStatus) error {
	ret := _m.Called(ctx, order, expected)
	return ret.Error(0)
}

// Stats provides a mock function with given fields: ctx, userID
func (_m *OrderRepository) Stats(ctx context.Context, userID string) (*model.OrderStats, error) {
	ret := _m.Called(ctx, userID)

	var r0 *model.OrderStats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.OrderStats)
	}
	return r0, ret.Error(1)
}

// NewOrderRepository creates a new instance of OrderRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
