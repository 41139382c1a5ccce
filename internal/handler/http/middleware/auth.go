package middleware

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RejectInvalidToken lets anonymous requests through and stops requests whose
// bearer token failed verification. It must run after jwtauth.Verifier.
func RejectInvalidToken(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "invalid token")
			return
		}

		// Refresh tokens carry type=refresh and cannot act on payroll data.
		if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
			response.Unauthorized(w, "invalid token type")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
