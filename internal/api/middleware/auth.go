package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"autohaven/internal/common"
	"autohaven/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const callerCtxKey contextKey = "caller"

// CallerResolver turns a bearer token into a caller identity.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (model.CallerIdentity, error)
}

type callerState struct {
	identity model.CallerIdentity
	tokenErr error // set when a token was sent but did not verify
}

// Identify resolves the caller once per request from "Authorization: Bearer T".
// A failed verification is remembered so protected routes can reject it;
// public routes see the caller as Anonymous.
func Identify(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := callerState{identity: model.Anonymous()}
			if token := jwtauth.TokenFromHeader(r); token != "" {
				identity, err := resolver.ResolveCaller(r.Context(), token)
				switch {
				case err == nil:
					state.identity = identity
				case errors.Is(err, common.ErrUnauthorized):
					state.tokenErr = err
				default:
					log.Printf("ERROR: %s %s: resolving caller: %v", r.Method, r.URL.Path, err)
					common.RespondWithError(w, http.StatusInternalServerError, common.ErrInternalServer.Error())
					return
				}
			}
			ctx := context.WithValue(r.Context(), callerCtxKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated rejects requests without a valid credential with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, _ := r.Context().Value(callerCtxKey).(callerState)
		if state.tokenErr != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Not authorized, "+state.tokenErr.Error())
			return
		}
		if state.identity.IsAnonymous() {
			common.RespondWithError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminOnly must run after RequireAuthenticated.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CallerFromContext(r.Context()).IsAdmin() {
			common.RespondWithError(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerFromContext returns the identity Identify stored, or Anonymous.
func CallerFromContext(ctx context.Context) model.CallerIdentity {
	state, ok := ctx.Value(callerCtxKey).(callerState)
	if !ok || state.tokenErr != nil {
		return model.Anonymous()
	}
	return state.identity
}
