package routehandlers

import (
	"net/http"
	"strconv"

	"github.com/estanteapp/estante/webutil"
	"github.com/go-chi/chi/v5"
)

// requireUserID reads the authenticated identity the auth middleware
// attached to the request context.
func requireUserID(r *http.Request) (string, error) {
	userID, ok := webutil.UserIDFromContext(r.Context())
	if !ok {
		return "", webutil.ErrUnauthorized("Token de autenticação ausente!")
	}
	return userID, nil
}

// pathID parses a numeric path parameter. ok is false when the segment
// is not a number, which callers report as the resource not existing.
func pathID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
