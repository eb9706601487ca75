package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"
)

// CatalogService serves restaurant and menu data from the delivery backend
// through an optional cache.
type CatalogService struct {
	gateway CatalogGateway
	cache   CatalogCache
	ttl     time.Duration
}

// NewCatalogService builds the service; a nil cache disables caching.
func NewCatalogService(gateway CatalogGateway, cache CatalogCache, ttl time.Duration) *CatalogService {
	return &CatalogService{gateway: gateway, cache: cache, ttl: ttl}
}

func (s *CatalogService) Restaurants(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	return s.cached(ctx, "catalog:restaurants:"+filters.Encode(), func() (json.RawMessage, error) {
		return s.gateway.GetRestaurants(ctx, filters)
	})
}

func (s *CatalogService) Restaurant(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	return s.cached(ctx, "catalog:restaurant:"+restaurantID, func() (json.RawMessage, error) {
		return s.gateway.GetRestaurant(ctx, restaurantID)
	})
}

func (s *CatalogService) Menu(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	return s.cached(ctx, "catalog:menu:"+restaurantID, func() (json.RawMessage, error) {
		return s.gateway.GetMenu(ctx, restaurantID)
	})
}

func (s *CatalogService) cached(ctx context.Context, key string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("catalog cache read failed", "key", key, "error", err)
		} else if ok {
			return json.RawMessage(data), nil
		}
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			slog.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return data, nil
}
