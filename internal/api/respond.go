package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"carouselcraft.io/carousel-studio/internal/core"
	"carouselcraft.io/carousel-studio/internal/payment"
)

const contentTypeJSON = "application/json; charset=utf-8"

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	w.Header().Set("Content-Type", contentTypeJSON)
	if err != nil {
		log.Printf("Failed to marshal JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// respondWithServiceError maps service errors to status codes. Unexpected
// errors are logged and reported as 500 with the generic message.
func respondWithServiceError(w http.ResponseWriter, err error, message string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, core.ErrValidation):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrSubscriptionRequired):
		respondWithJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": "An active subscription is required to export carousels",
			"hint":  "POST /api/checkout to purchase lifetime access",
		})
	case errors.Is(err, core.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, payment.ErrInvalidSignature):
		respondWithError(w, http.StatusBadRequest, "Invalid signature")
	case errors.Is(err, core.ErrPaymentsDisabled):
		respondWithError(w, http.StatusServiceUnavailable, "Payments are not configured")
	default:
		log.Printf("%s: %v", message, err)
		respondWithError(w, http.StatusInternalServerError, message)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
