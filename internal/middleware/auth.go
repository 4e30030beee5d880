package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/allmight/taskapp/internal/model"
)

// Authenticator validates a bearer token and resolves it to its user.
// Resolution must require the token to still be on the user's session
// list; a revoked token is rejected even with a valid signature.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Auth returns a middleware that authenticates requests with a bearer
// token. The authenticated user and the raw token are placed on the
// request context so handlers can revoke the exact session they were
// called with.
func Auth(authenticator Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				return
			}

			token := parts[1]
			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				model.NewUnauthorizedError("please authenticate").WriteJSON(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user from context
func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserKey).(*model.User); ok {
		return user
	}
	return nil
}

// GetToken extracts the bearer token the request authenticated with
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}
