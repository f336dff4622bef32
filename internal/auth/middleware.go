package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	unauthorizedMessage = "Unauthorized"
	invalidTokenMessage = "Invalid token"
)

type TokenVerifier interface {
	VerifyToken(tokenString string) (*User, error)
}

type Middleware struct {
	verifier TokenVerifier
}

func NewMiddleware(verifier TokenVerifier) *Middleware {
	return &Middleware{
		verifier: verifier,
	}
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(authorizationHeader)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			writeAuthError(w, "unauthorized", unauthorizedMessage)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

		user, err := m.verifier.VerifyToken(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			writeAuthError(w, "invalid_token", invalidTokenMessage)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
