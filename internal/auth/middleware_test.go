package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
)

type fakeUsers map[string]*model.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

type brokenUsers struct{}

func (brokenUsers) GetByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("sqlite: database is locked")
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	users := fakeUsers{
		"u-active":   {ID: "u-active", Email: "a@example.com", IsActive: true},
		"u-inactive": {ID: "u-inactive", Email: "b@example.com", IsActive: false},
	}

	activeToken, err := ts.Generate("u-active")
	require.NoError(t, err)
	inactiveToken, err := ts.Generate("u-inactive")
	require.NoError(t, err)
	ghostToken, err := ts.Generate("u-deleted")
	require.NoError(t, err)

	var seen *model.User
	protected := RequireAuth(ts, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "no credentials", wantStatus: http.StatusUnauthorized},
		{name: "bearer header", header: "Bearer " + activeToken, wantStatus: http.StatusOK},
		{name: "token header", header: "Token " + activeToken, wantStatus: http.StatusOK},
		{name: "cookie", cookie: activeToken, wantStatus: http.StatusOK},
		{name: "unknown scheme", header: "Basic " + activeToken, wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "inactive user", header: "Bearer " + inactiveToken, wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + ghostToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/recipe/ingredients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()

			protected.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u-active", seen.ID)
			} else {
				assert.Nil(t, seen, "handler must not run")
				assert.Contains(t, rr.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}

func TestRequireAuth_LookupFailureIsServerError(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("u-active")
	require.NoError(t, err)

	called := false
	protected := RequireAuth(ts, brokenUsers{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/recipe/ingredients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, called)
	assert.Contains(t, rr.Body.String(), `"error":"internal_error"`)
	assert.NotContains(t, rr.Body.String(), "sqlite")
}

func TestUserFromContext_Anonymous(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	user := &model.User{ID: "u1"}
	got, ok := UserFromContext(WithUser(context.Background(), user))
	assert.True(t, ok)
	assert.Same(t, user, got)
}
