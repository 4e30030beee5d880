package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/allmight/taskapp/internal/model"
)

// TokenStore defines the persistence operations the token service needs.
// Issued tokens are stored on the user record so each one can be revoked
// independently of the others.
type TokenStore interface {
	AddToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) error
	ClearTokens(ctx context.Context, userID string) error
	GetByIDWithToken(ctx context.Context, userID, token string) (*model.User, error)
}

// Claims are the JWT claims carried by every issued token
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenService issues and validates bearer tokens.
//
// A token is only accepted while it is both cryptographically valid and
// still present on the user record, so logging out one session does not
// affect the user's other sessions.
type TokenService struct {
	store  TokenStore
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a new token service
func NewTokenService(store TokenStore, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a new token for the user and records it on the user's
// session list. The jti claim makes every token unique, so removing one
// from the session list never touches a token issued in the same second.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	if err := s.store.AddToken(ctx, userID, signed); err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}
	return signed, nil
}

// Verify validates the token signature and expiry and returns the user ID
// it was issued for. It does not consult the session list; Authenticate
// does that.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Authenticate validates the token and loads its user, requiring the token
// to still be on the user's session list. A token that was individually
// revoked fails here even while its signature remains valid.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	userID, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetByIDWithToken(ctx, userID, tokenString)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTokenRevoked
	}
	return user, nil
}

// Revoke removes a single token from the user's session list
func (s *TokenService) Revoke(ctx context.Context, userID, token string) error {
	return s.store.RemoveToken(ctx, userID, token)
}

// RevokeAll removes every token issued to the user
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.store.ClearTokens(ctx, userID)
}
