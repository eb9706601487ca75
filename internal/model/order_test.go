package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus(t *testing.T) {
	for _, s := range orderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("LOST").Valid())
	assert.False(t, OrderStatus("").Valid())

	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
}

func TestSubtotalOf(t *testing.T) {
	items := []OrderItem{
		{Name: "Biryani", Price: decimal.NewFromInt(100), Qty: 2},
		{Name: "Lassi", Price: decimal.NewFromInt(50), Qty: 1},
		{Name: "Tea", Price: decimal.RequireFromString("12.25"), Qty: 4},
	}

	assert.Equal(t, "299", SubtotalOf(items).String())
	assert.True(t, SubtotalOf(nil).IsZero())
}

func TestOrderJSONDuration(t *testing.T) {
	placed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	delivered := placed.Add(37*time.Minute + 40*time.Second)
	order := Order{ID: "o1", Status: StatusDelivered, Total: decimal.RequireFromString("270.50"), PlacedAt: placed, DeliveredAt: &delivered}

	data, err := json.Marshal(order)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, 38.0, body["duration"])
	assert.Equal(t, 270.5, body["total"])
	assert.Equal(t, "o1", body["id"])
	assert.NotContains(t, body, "cancelledAt")

	order.DeliveredAt = nil
	data, err = json.Marshal(&order)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "duration")
}

func TestCreateOrderRequestValidate(t *testing.T) {
	valid := func() CreateOrderRequest {
		return CreateOrderRequest{
			RestaurantID:    "r1",
			RestaurantName:  "Spice Route",
			Items:           []OrderItem{{Name: "Biryani", Price: decimal.NewFromInt(100), Qty: 1}},
			Total:           decimal.NewFromInt(100),
			DeliveryAddress: DeliveryAddress{Line1: "12 MG Road", City: "Pune", Pincode: "411001"},
		}
	}
	negativeETA := -1

	tests := []struct {
		name      string
		mutate    func(r *CreateOrderRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *CreateOrderRequest) {}},
		{name: "free item", mutate: func(r *CreateOrderRequest) { r.Items[0].Price = decimal.Zero }},
		{name: "negative price", mutate: func(r *CreateOrderRequest) { r.Items[0].Price = decimal.NewFromInt(-1) }, wantField: "items[0].price"},
		{name: "unnamed item", mutate: func(r *CreateOrderRequest) { r.Items[0].Name = "" }, wantField: "items[0].name"},
		{name: "negative discount", mutate: func(r *CreateOrderRequest) { r.Discount = decimal.NewFromInt(-5) }, wantField: "discount"},
		{name: "negative eta", mutate: func(r *CreateOrderRequest) { r.ETA = &negativeETA }, wantField: "eta"},
		{name: "bad payment", mutate: func(r *CreateOrderRequest) { r.PaymentMethod = "CHEQUE" }, wantField: "paymentMethod"},
		{name: "no restaurant", mutate: func(r *CreateOrderRequest) { r.RestaurantID = " " }, wantField: "restaurantId"},
		{name: "trailing zeros", mutate: func(r *CreateOrderRequest) { r.Total = decimal.RequireFromString("100.500") }},
		{name: "total rounds to zero", mutate: func(r *CreateOrderRequest) { r.Total = decimal.RequireFromString("0.004") }, wantField: "total"},
		{name: "sub-cent price", mutate: func(r *CreateOrderRequest) { r.Items[0].Price = decimal.RequireFromString("0.001") }, wantField: "items[0].price"},
		{name: "sub-cent fee", mutate: func(r *CreateOrderRequest) { r.DeliveryFee = decimal.RequireFromString("9.999") }, wantField: "deliveryFee"},
		{name: "total too large", mutate: func(r *CreateOrderRequest) { r.Total = decimal.RequireFromString("10000000000") }, wantField: "total"},
		{name: "explicit subtotal too large", mutate: func(r *CreateOrderRequest) {
			s := decimal.RequireFromString("12345678901.5")
			r.Subtotal = &s
		}, wantField: "subtotal"},
		{name: "items add up too large", mutate: func(r *CreateOrderRequest) {
			r.Items[0].Price = decimal.RequireFromString("9999999999")
			r.Items[0].Qty = 2
		}, wantField: "subtotal"},
		{name: "largest total", mutate: func(r *CreateOrderRequest) { r.Total = MaxAmount }},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := valid()
			testCase.mutate(&req)

			err := req.Validate()

			if testCase.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, ErrValidation)
			require.Len(t, verr.Errors, 1)
			assert.Equal(t, testCase.wantField, verr.Errors[0].Field)
		})
	}
}

func TestOrderFilterNormalize(t *testing.T) {
	assert.Equal(t, OrderFilter{Limit: DefaultListLimit}, OrderFilter{}.Normalize())
	assert.Equal(t, OrderFilter{Limit: MaxListLimit, Skip: 0}, OrderFilter{Limit: 500, Skip: -3}.Normalize())
	assert.Equal(t, OrderFilter{Status: StatusPlaced, Limit: 5, Skip: 10}, OrderFilter{Status: StatusPlaced, Limit: 5, Skip: 10}.Normalize())
}
