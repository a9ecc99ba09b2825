package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"autohaven/internal/common"
	"autohaven/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

type stubResolver map[string]model.CallerIdentity

var errStoreDown = errors.New("store down")

func (s stubResolver) ResolveCaller(_ context.Context, token string) (model.CallerIdentity, error) {
	switch token {
	case "":
		return model.Anonymous(), nil
	case "broken-store":
		return model.CallerIdentity{}, errStoreDown
	}
	if id, ok := s[token]; ok {
		return id, nil
	}
	return model.CallerIdentity{}, common.ErrInvalidToken
}

func TestAuthMiddleware(t *testing.T) {
	resolver := stubResolver{
		"user-token":  model.IdentityFor(&model.User{ID: "u1"}),
		"admin-token": model.IdentityFor(&model.User{ID: "a1", IsAdmin: true}),
	}

	var seen model.CallerIdentity
	record := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	public := Identify(resolver)(record)
	authed := Identify(resolver)(RequireAuthenticated(record))
	admin := Identify(resolver)(RequireAuthenticated(AdminOnly(record)))

	tests := []struct {
		name     string
		handler  http.Handler
		token    string
		wantCode int
		wantKind model.CallerKind
	}{
		{"public anonymous", public, "", http.StatusNoContent, model.CallerAnonymous},
		{"public bad token is anonymous", public, "nonsense", http.StatusNoContent, model.CallerAnonymous},
		{"public user", public, "user-token", http.StatusNoContent, model.CallerAuthenticated},
		{"authed without token", authed, "", http.StatusUnauthorized, 0},
		{"authed bad token", authed, "nonsense", http.StatusUnauthorized, 0},
		{"authed user", authed, "user-token", http.StatusNoContent, model.CallerAuthenticated},
		{"admin as user", admin, "user-token", http.StatusForbidden, 0},
		{"admin as admin", admin, "admin-token", http.StatusNoContent, model.CallerAdmin},
		{"resolver failure", public, "broken-store", http.StatusInternalServerError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = model.CallerIdentity{Kind: -1}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusNoContent {
				assert.Equal(t, tt.wantKind, seen.Kind)
			} else {
				assert.Equal(t, model.CallerKind(-1), seen.Kind, "handler must not run")
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestCallerFromContext_DefaultsToAnonymous(t *testing.T) {
	assert.True(t, CallerFromContext(context.Background()).IsAnonymous())
}
