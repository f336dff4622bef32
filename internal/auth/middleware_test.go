package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blagoySimandov/bidcompare/go/internal/auth"
)

type stubVerifier map[string]*auth.User

func (s stubVerifier) VerifyToken(token string) (*auth.User, error) {
	if user, ok := s[token]; ok {
		return user, nil
	}
	return nil, auth.ErrInvalidToken
}

func TestRequireAuth(t *testing.T) {
	mw := auth.NewMiddleware(stubVerifier{"good": {ID: "user-1"}})

	var seen *auth.User
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "Bearer good", http.StatusNoContent, "user-1"},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer ") {
				t.Errorf("WWW-Authenticate = %q, want a bearer challenge", rec.Header().Get("WWW-Authenticate"))
			}
			if tt.wantUser == "" {
				if seen != nil {
					t.Errorf("handler ran with user %+v", seen)
				}
				return
			}
			if seen == nil || seen.ID != tt.wantUser {
				t.Errorf("user = %+v, want %s", seen, tt.wantUser)
			}
		})
	}
}
