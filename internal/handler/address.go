package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fooddelivery/internal/model"
	"fooddelivery/internal/mw"
	"fooddelivery/internal/service"
)

func AddAddressHandler(accounts *service.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var in model.AddressInput
		if err := decodeJSON(r, &in, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		user, err := accounts.AddAddress(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, "Address added successfully", user)
	}
}

func UpdateAddressHandler(accounts *service.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var patch model.AddressPatch
		if err := decodeJSON(r, &patch, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		user, err := accounts.UpdateAddress(r.Context(), userID, chi.URLParam(r, "addressId"), patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "Address updated successfully", user)
	}
}

func DeleteAddressHandler(accounts *service.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := accounts.DeleteAddress(r.Context(), userID, chi.URLParam(r, "addressId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "Address deleted successfully", user)
	}
}
