package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autohaven/internal/common"
	"autohaven/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const claimUserID = "user_id"

// UserFinder looks a user up by id. Repositories satisfy it.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Engine issues and verifies HS256 bearer tokens and classifies callers.
// It keeps no server-side session state.
type Engine struct {
	auth  *jwtauth.JWTAuth
	ttl   time.Duration
	users UserFinder
	now   func() time.Time
}

func NewEngine(secret []byte, ttl time.Duration, users UserFinder) *Engine {
	return &Engine{
		auth:  jwtauth.New("HS256", secret, nil),
		ttl:   ttl,
		users: users,
		now:   time.Now,
	}
}

// IssueCredential signs a token for user that expires after the engine's TTL.
func (e *Engine) IssueCredential(user *model.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", fmt.Errorf("security.IssueCredential: missing user id")
	}
	now := e.now()
	claims := jwt.MapClaims{
		claimUserID: user.ID,
		"iat":       now.Unix(),
		"exp":       now.Add(e.ttl).Unix(),
	}
	_, tokenString, err := e.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("security.IssueCredential: %w", err)
	}
	return tokenString, nil
}

// VerifyCredential checks the signature and expiry of token and returns the
// user id it was issued for.
func (e *Engine) VerifyCredential(token string) (string, error) {
	if token == "" {
		return "", common.ErrInvalidToken
	}
	tok, err := jwtauth.VerifyToken(e.auth, token)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	raw, ok := tok.Get(claimUserID)
	if !ok {
		return "", common.ErrInvalidToken
	}
	userID, ok := raw.(string)
	if !ok || userID == "" {
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

// ResolveCaller maps a bearer token to a caller identity. An empty token is
// Anonymous; a token that fails verification or names an unknown user is an
// error, never Anonymous.
func (e *Engine) ResolveCaller(ctx context.Context, token string) (model.CallerIdentity, error) {
	if token == "" {
		return model.Anonymous(), nil
	}
	userID, err := e.VerifyCredential(token)
	if err != nil {
		return model.Anonymous(), err
	}
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.Anonymous(), common.ErrInvalidToken
		}
		return model.Anonymous(), fmt.Errorf("security.ResolveCaller: %w", err)
	}
	return model.IdentityFor(user.Public()), nil
}
