package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AuthError uses the same "error" key as the rest of the API so clients can
// read every failure the same way.
type AuthError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeAuthError answers with 401 and a bearer challenge naming the error.
func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q`, code))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(AuthError{Error: code, Message: message}); err != nil {
		log.Error().Err(err).Msg("Failed to write auth error")
	}
}
