package api

import (
	"net/http"

	"carouselcraft.io/carousel-studio/internal/core"
)

type APIHandler struct {
	users         *core.UserService
	carousels     *core.CarouselService
	settings      *core.SettingsService
	subscriptions *core.SubscriptionService
}

func NewAPIHandler(users *core.UserService, carousels *core.CarouselService, settings *core.SettingsService, subscriptions *core.SubscriptionService) *APIHandler {
	return &APIHandler{
		users:         users,
		carousels:     carousels,
		settings:      settings,
		subscriptions: subscriptions,
	}
}

type credentialsRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "User ID and password are required")
		return
	}

	user, err := h.users.Signup(req.UserID, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create user")
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "User ID and password are required")
		return
	}

	token, err := h.users.Login(req.UserID, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to log in")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
