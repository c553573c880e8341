package server

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
)

// Wrap puts CORS and, when accessLog is set, an access log in front of the
// API router. Dashboards are served from other origins.
func Wrap(next http.Handler, accessLog io.Writer) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)
	h := cors(next)
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return h
}
