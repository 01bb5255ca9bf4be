package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
)

// contextKey is unexported so no other package can read or overwrite the
// values this package stores in a request context.
type contextKey string

const userKey contextKey = "user"

// TokenCookie is the cookie the GitHub callback stores the access token in.
const TokenCookie = "token"

// UserLoader looks up the account a token belongs to.
// *sqlite.UserDB and *service.UserService both satisfy it.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

var errNoToken = errors.New("auth: no token")

// RequireAuth rejects requests without a valid access token with 401 before
// they reach the handler. The token's user must still exist and be active;
// it is stored in the request context for UserFromContext. A failed user
// lookup other than not-found is a 500.
func RequireAuth(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractToken(r)
			if err != nil {
				unauthorized(w, "authentication credentials were not provided")
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			switch {
			case errors.Is(err, apperror.ErrNotFound):
				unauthorized(w, "user inactive or deleted")
				return
			case err != nil:
				internalError(w)
				return
			case !user.IsActive:
				unauthorized(w, "user inactive or deleted")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user as the authenticated caller.
// Tests use it to call handlers as a given user without issuing a token.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// extractToken reads the token from the Authorization header ("Bearer" or
// "Token" scheme) and falls back to the token cookie.
func extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok {
			return "", errNoToken
		}
		switch strings.ToLower(scheme) {
		case "bearer", "token":
			if token = strings.TrimSpace(token); token != "" {
				return token, nil
			}
		}
		return "", errNoToken
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return "", errNoToken
	}
	return cookie.Value, nil
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}

func internalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred"}`))
}
