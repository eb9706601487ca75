package mocks

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/stretchr/testify/mock"

	"fooddelivery/internal/model"
)

// DeliveryGateway is a mock type for the DeliveryGateway and CatalogGateway types
type DeliveryGateway struct {
	mock.Mock
}

// EstimateETA provides a mock function with given fields: ctx, restaurantID, addr
func (_m *DeliveryGateway) EstimateETA(ctx context.Context, restaurantID string, addr model.DeliveryAddress) (int, error) {
	ret := _m.Called(ctx, restaurantID, addr)
	return ret.Int(0), ret.Error(1)
}

// AssignDelivery provides a mock function with given fields: ctx, a
func (_m *DeliveryGateway) AssignDelivery(ctx context.Context, a model.DeliveryAssignment) error {
	ret := _m.Called(ctx, a)
	return ret.Error(0)
}

// UpdateDeliveryStatus provides a mock function with given fields: ctx, orderID, status
func (_m *DeliveryGateway) UpdateDeliveryStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	ret := _m.Called(ctx, orderID, status)
	return ret.Error(0)
}

// GetRestaurants provides a mock function with given fields: ctx, filters
func (_m *DeliveryGateway) GetRestaurants(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	ret := _m.Called(ctx, filters)
	return rawMessage(ret.Get(0)), ret.Error(1)
}

// GetRestaurant provides a mock function with given fields: ctx, restaurantID
func (_m *DeliveryGateway) GetRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	ret := _m.Called(ctx, restaurantID)
	return rawMessage(ret.Get(0)), ret.Error(1)
}

// GetMenu provides a mock function with given fields: ctx, restaurantID
func (_m *DeliveryGateway) GetMenu(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	ret := _m.Called(ctx, restaurantID)
	return rawMessage(ret.Get(0)), ret.Error(1)
}

// HealthCheck provides a mock function with given fields: ctx
func (_m *DeliveryGateway) HealthCheck(ctx context.Context) (json.RawMessage, error) {
	ret := _m.Called(ctx)
	return rawMessage(ret.Get(0)), ret.Error(1)
}

func rawMessage(v any) json.RawMessage {
	switch data := v.(type) {
	case json.RawMessage:
		return data
	case string:
		return json.RawMessage(data)
	}
	return nil
}

// NewDeliveryGateway creates a new instance of DeliveryGateway. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewDeliveryGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *DeliveryGateway {
	m := &DeliveryGateway{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
