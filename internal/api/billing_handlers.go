package api

import (
	"io"
	"log"
	"net/http"

	"carouselcraft.io/carousel-studio/internal/core"
	"carouselcraft.io/carousel-studio/internal/store"
)

const maxWebhookBytes = 65536

func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	settings, err := h.settings.Get(sess.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load settings")
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

func (h *APIHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	var upd core.SettingsUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	settings, err := h.settings.Update(sess.UserID, upd)
	if err != nil {
		respondWithServiceError(w, err, "Failed to save settings")
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

type subscriptionResponse struct {
	Active       bool                `json:"active"`
	Subscription *store.Subscription `json:"subscription,omitempty"`
}

func (h *APIHandler) GetSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	sub, active, err := h.subscriptions.Status(sess.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load subscription")
		return
	}
	respondWithJSON(w, http.StatusOK, subscriptionResponse{Active: active, Subscription: sub})
}

func (h *APIHandler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	checkout, err := h.subscriptions.Checkout(r.Context(), sess.UserID, r.Header.Get("Origin"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to create checkout session")
		return
	}
	respondWithJSON(w, http.StatusOK, checkout)
}

// StripeWebhookHandler must see the raw body for signature verification.
func (h *APIHandler) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		respondWithError(w, http.StatusServiceUnavailable, "Failed to read request body")
		return
	}

	if err := h.subscriptions.HandleWebhook(payload, r.Header.Get("Stripe-Signature")); err != nil {
		respondWithServiceError(w, err, "Failed to process webhook")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
