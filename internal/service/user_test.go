package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/auth"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "test@MOSHECOHEN.com", want: "test@moshecohen.com"},
		{in: "Test2@Example.com", want: "Test2@example.com"},
		{in: "TEST3@EXAMPLE.COM", want: "TEST3@example.com"},
		{in: "test4@example.COM", want: "test4@example.com"},
		{in: "  padded@Example.com ", want: "padded@example.com"},
		{in: "odd@name@HOST.io", want: "odd@name@host.io"},
		{in: "no-at-sign", want: "no-at-sign"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.in))
		})
	}
}

func TestCreateUser_WithEmail(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.CreateUser(context.Background(), "test@example.com", "testpass123")
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", user.Email)
	assert.True(t, svc.CheckPassword(user, "testpass123"))
	assert.False(t, svc.CheckPassword(user, "wrong"))
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
}

func TestCreateUser_EmailNormalized(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.CreateUser(context.Background(), "test@MOSHECOHEN.com", "test123")
	require.NoError(t, err)

	assert.Equal(t, "test@moshecohen.com", user.Email)
}

func TestCreateUser_RequiresEmail(t *testing.T) {
	svc, repo := newTestUserService(t)

	for _, email := range []string{"", "   "} {
		_, err := svc.CreateUser(context.Background(), email, "test123")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "email", appErr.Field)
	}
	assert.Empty(t, repo.users, "nothing is stored")
}

func TestCreateSuperuser(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.CreateSuperuser(context.Background(), "admin@EXAMPLE.com", "test123")
	require.NoError(t, err)

	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsStaff)
	assert.Equal(t, "admin@example.com", user.Email)
}

func TestCreateUser_WithoutPasswordIsUnusable(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.CreateUser(context.Background(), "nopass@example.com", "")
	require.NoError(t, err)

	assert.False(t, user.HasUsablePassword())
	assert.False(t, svc.CheckPassword(user, ""))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "dup@example.com", "test123")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "dup@EXAMPLE.COM", "test123")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRegister_PasswordRules(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "short@example.com", "pw", "Short")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	user, err := svc.Register(ctx, "ok@example.com", "longenough", "  Ok  ")
	require.NoError(t, err)
	assert.Equal(t, "Ok", user.Name)
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "login@example.com", "testpass123")
	require.NoError(t, err)

	result, err := svc.Authenticate(ctx, "login@EXAMPLE.com", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Authenticate(ctx, "login@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "ghost@example.com", "testpass123")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	repo.users[user.ID].IsActive = false
	_, err = svc.Authenticate(ctx, "login@example.com", "testpass123")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "", "x")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoginOrRegisterGitHub(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	existing, err := svc.CreateUser(ctx, "octo@example.com", "test123")
	require.NoError(t, err)

	result, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 1, Login: "octo", Email: "octo@EXAMPLE.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.User.ID, "linked by email")

	result, err = svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 2, Login: "newbie", Name: "New Bie", Email: "newbie@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "New Bie", result.User.Name)
	assert.False(t, result.User.HasUsablePassword())
	assert.Len(t, repo.users, 2)

	_, err = svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 3, Login: "hidden"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "before@example.com", "test123")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "taken@example.com", "test123")
	require.NoError(t, err)

	name := "After"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "before@example.com", updated.Email)
	assert.True(t, svc.CheckPassword(updated, "test123"), "password untouched")

	password := "brandnew1"
	updated, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: &password})
	require.NoError(t, err)
	assert.True(t, svc.CheckPassword(updated, "brandnew1"))

	taken := "taken@EXAMPLE.com"
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.UpdateProfile(ctx, "missing", ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
