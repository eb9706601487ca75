package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"fooddelivery/internal/service"
)

var restaurantFilters = []string{"cuisine", "rating", "search"}

func ListRestaurantsHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := url.Values{}
		for _, key := range restaurantFilters {
			if v := q.Get(key); v != "" {
				filters.Set(key, v)
			}
		}

		data, err := catalog.Restaurants(r.Context(), filters)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", data)
	}
}

func GetRestaurantHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := catalog.Restaurant(r.Context(), chi.URLParam(r, "restaurantId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", data)
	}
}

func GetMenuHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := catalog.Menu(r.Context(), chi.URLParam(r, "restaurantId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", data)
	}
}
