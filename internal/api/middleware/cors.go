// internal/api/middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// allowAll lets any origin call the backend with credentials. The origin
// is echoed since "*" is not valid alongside credentials.
var allowAll = cors.New(cors.Options{
	AllowOriginFunc:      func(string) bool { return true },
	AllowCredentials:     true,
	AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowedHeaders:       []string{"*"},
	MaxAge:               600,
	OptionsSuccessStatus: http.StatusOK,
})

// CORS allows any origin to call the wrapped handler and answers
// preflight requests directly.
func CORS(next http.Handler) http.Handler {
	return allowAll.Handler(next)
}
