package api

import (
	"net/http"
	"strings"

	"carouselcraft.io/carousel-studio/internal/auth"
)

// JWTAuthMiddleware resolves the bearer token and stores the session in the
// request context.
func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		session, err := h.users.Authenticate(tokenString)
		if err != nil {
			respondWithServiceError(w, err, "Failed to process user identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

// session reads the session set by JWTAuthMiddleware.
func session(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	s, err := auth.SessionFrom(r.Context())
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return auth.Session{}, false
	}
	return s, true
}
