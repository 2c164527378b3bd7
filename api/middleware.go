package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/estanteapp/estante/auth"
	"github.com/estanteapp/estante/webutil"
)

// Authenticator guards protected routes. It extracts the bearer token
// from the Authorization header, validates it, and attaches the
// resolved user identity to the request context for handlers to read.
func Authenticator(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(webutil.HeaderAuthorization)
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				webutil.RespondWithError(w, http.StatusUnauthorized, "Token de autenticação ausente!")
				return
			}

			userID, err := tokens.Validate(parts[1])
			if err != nil {
				message := "Token de autenticação inválido!"
				if errors.Is(err, auth.ErrTokenExpired) {
					message = "Token de autenticação expirado!"
				}
				webutil.RespondWithError(w, http.StatusUnauthorized, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(webutil.WithUserID(r.Context(), userID)))
		})
	}
}
