package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fooddelivery/internal/model"
	"fooddelivery/internal/mw"
	"fooddelivery/internal/service"
)

func CreateOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req model.CreateOrderRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		order, err := orders.CreateOrder(r.Context(), userID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, "Order placed successfully", order)
	}
}

func ListOrdersHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		q := r.URL.Query()
		filter := model.OrderFilter{
			Status: model.OrderStatus(q.Get("status")),
			Limit:  queryInt(q.Get("limit"), model.DefaultListLimit),
			Skip:   queryInt(q.Get("skip"), 0),
		}

		page, err := orders.ListOrders(r.Context(), userID, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: page.Orders, Pagination: &page.Pagination})
	}
}

// queryInt parses a query value, falling back when it is absent or not a
// number.
func queryInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func GetOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		order, err := orders.GetOrderByID(r.Context(), chi.URLParam(r, "orderId"), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", order)
	}
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func UpdateOrderStatusHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req statusRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		order, err := orders.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "Order status updated", order)
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func CancelOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req cancelRequest
		if err := decodeJSON(r, &req, true); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		order, err := orders.CancelOrder(r.Context(), chi.URLParam(r, "orderId"), userID, req.Reason)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "Order cancelled successfully", order)
	}
}

func OrderStatsHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		stats, err := orders.GetOrderStats(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", stats)
	}
}

// OrderQRCodeHandler serves a PNG QR code of the order's tracking link to the
// order's owner.
func OrderQRCodeHandler(orders *service.OrderService, qr service.QRGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		order, err := orders.GetOrderByID(r.Context(), chi.URLParam(r, "orderId"), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		png, err := qr.Generate(order.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, max-age=300")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
