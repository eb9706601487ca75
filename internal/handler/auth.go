package handler

import (
	"net/http"

	"fooddelivery/internal/model"
	"fooddelivery/internal/mw"
	"fooddelivery/internal/service"
)

func SignupHandler(accounts *service.AccountService, tokens *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.SignupRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		user, err := accounts.Signup(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respondWithToken(w, r, tokens, http.StatusCreated, "User registered successfully", user)
	}
}

func LoginHandler(accounts *service.AccountService, tokens *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := accounts.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respondWithToken(w, r, tokens, http.StatusOK, "Login successful", user)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, tokens *TokenIssuer, status int, message string, user *model.User) {
	token, err := tokens.Issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeData(w, status, message, model.AuthResult{User: user, Token: token})
}

func GetProfileHandler(accounts *service.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := accounts.GetProfile(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "", user)
	}
}

func UpdateProfileHandler(accounts *service.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var update model.ProfileUpdate
		if err := decodeJSON(r, &update, false); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid json")
			return
		}

		user, err := accounts.UpdateProfile(r.Context(), userID, update)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, "Profile updated successfully", user)
	}
}
