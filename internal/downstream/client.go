package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"fooddelivery/internal/model"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 100 * time.Millisecond
)

// Client talks to the delivery backend that owns restaurants, menus, ETA
// estimation and courier assignment.
type Client struct {
	baseURL        string
	client         *http.Client
	maxRetries     uint64
	initialBackoff time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRetryPolicy bounds the number of retries after the first attempt and
// sets the first backoff interval, which doubles on each retry.
func WithRetryPolicy(maxRetries uint64, initialBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: defaultTimeout},
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) HealthCheck(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "health check", http.MethodGet, "/healthz", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRestaurants(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "get restaurants", http.MethodGet, "/internal/restaurants", filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	var out json.RawMessage
	path := "/internal/restaurants/" + url.PathEscape(restaurantID)
	if err := c.do(ctx, "get restaurant "+restaurantID, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMenu(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	var out json.RawMessage
	path := "/internal/menu/" + url.PathEscape(restaurantID)
	if err := c.do(ctx, "get menu "+restaurantID, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type etaRequest struct {
	RestaurantID    string                `json:"restaurantId"`
	DeliveryAddress model.DeliveryAddress `json:"deliveryAddress"`
}

type etaResponse struct {
	ETA  int    `json:"eta"`
	Unit string `json:"unit,omitempty"`
}

// EstimateETA returns the estimated delivery time in minutes. It makes a
// single attempt; callers fall back to their own estimate on failure.
func (c *Client) EstimateETA(ctx context.Context, restaurantID string, addr model.DeliveryAddress) (int, error) {
	var out etaResponse
	body := etaRequest{RestaurantID: restaurantID, DeliveryAddress: addr}
	if err := c.call(ctx, 0, "calculate eta", http.MethodPost, "/internal/eta", nil, body, &out); err != nil {
		return 0, err
	}
	return out.ETA, nil
}

type assignmentResponse struct {
	OrderID             string `json:"orderId"`
	DeliveryPartnerID   string `json:"deliveryPartnerId"`
	DeliveryPartnerName string `json:"deliveryPartnerName"`
	Status              string `json:"status"`
}

func (c *Client) AssignDelivery(ctx context.Context, a model.DeliveryAssignment) error {
	var out assignmentResponse
	if err := c.do(ctx, "assign delivery", http.MethodPost, "/internal/delivery/assign", nil, a, &out); err != nil {
		return err
	}
	slog.Debug("delivery assigned", "order", a.OrderID, "partner", out.DeliveryPartnerID, "status", out.Status)
	return nil
}

func (c *Client) UpdateDeliveryStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	body := map[string]model.OrderStatus{"status": status}
	path := "/internal/delivery/" + url.PathEscape(orderID)
	return c.do(ctx, "update delivery status "+orderID, http.MethodPatch, path, nil, body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	return c.call(ctx, c.maxRetries, op, method, path, query, in, out)
}

func (c *Client) call(ctx context.Context, maxRetries uint64, op, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return local(op, fmt.Errorf("encode request: %w", err))
		}
	}

	attempt := func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return backoff.Permanent(local(op, fmt.Errorf("create request: %w", err)))
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(unavailable(op, err))
			}
			return unavailable(op, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return unavailable(op, fmt.Errorf("read response: %w", err))
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			rej := rejected(op, resp.StatusCode, respBody)
			if resp.StatusCode >= 500 && idempotent(method) {
				return rej
			}
			return backoff.Permanent(rej)
		}

		if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			e := rejected(op, resp.StatusCode, nil)
			e.Message = "malformed response"
			e.Err = err
			return backoff.Permanent(e)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	retries := 0
	err := backoff.RetryNotify(attempt,
		backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx),
		func(err error, wait time.Duration) {
			retries++
			slog.Info("retrying delivery backend call", "op", op, "attempt", retries, "wait", wait, "error", err)
		},
	)
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return unavailable(op, err)
}

// idempotent reports whether a 5xx answer to method may be retried.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
