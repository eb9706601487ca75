package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fooddelivery/internal/service"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) (json.RawMessage, error)
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database,omitempty"`
	Delivery  string `json:"delivery,omitempty"`
}

func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:    "ok",
			Service:   "fooddelivery",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HealthHandler reports store and delivery backend reachability. Only a
// store outage fails the check; the catalog degrades on its own.
func HealthHandler(store service.StoreAvailability, delivery HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:    "ok",
			Service:   "fooddelivery",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Database:  "connected",
			Delivery:  "ok",
		}
		status := http.StatusOK

		if !store.StoreAvailable() {
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if _, err := delivery.HealthCheck(ctx); err != nil {
			resp.Delivery = "unavailable"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
