package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Post("/webhooks/stripe", apiHandler.StripeWebhookHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Route("/carousels", func(r chi.Router) {
				r.Post("/", apiHandler.CreateCarouselHandler)
				r.Get("/", apiHandler.ListCarouselsHandler)
				r.Get("/{carouselID}", apiHandler.GetCarouselHandler)
				r.Delete("/{carouselID}", apiHandler.DeleteCarouselHandler)
				r.Post("/{carouselID}/export", apiHandler.ExportCarouselHandler)

				r.Put("/{carouselID}/slides/{slideID}", apiHandler.EditSlideHandler)
				r.Post("/{carouselID}/slides/{slideID}/regenerate", apiHandler.RegenerateSlideHandler)
				r.Get("/{carouselID}/slides/{slideNumber}/preview.png", apiHandler.PreviewSlideHandler)
			})

			r.Get("/settings", apiHandler.GetSettingsHandler)
			r.Put("/settings", apiHandler.UpdateSettingsHandler)

			r.Get("/subscription", apiHandler.GetSubscriptionHandler)
			r.Post("/checkout", apiHandler.CheckoutHandler)
		})
	})

	return r
}
