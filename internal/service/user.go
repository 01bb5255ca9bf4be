// Package service contains the business rules of the application.
//
//	Handler (HTTP) → Service (rules) → Repository (SQL)
//
// Services accept and return plain Go values and apperror errors; they know
// nothing about HTTP. Every dependency is an interface injected through the
// constructor, so tests pass in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// MinPasswordLength applies to passwords chosen through the API.
const MinPasswordLength = 5

// NormalizeEmail trims surrounding whitespace and lower-cases the domain part
// of email. The local part is left as typed: mailbox names may be
// case-sensitive, domains never are. An address without "@" is returned trimmed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return email
	}
	return email[:i+1] + strings.ToLower(email[i+1:])
}

// UserService is the identity store: account creation, credentials and
// profile changes.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles an authenticated user with a freshly issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// ProfileUpdate holds the fields of a partial profile update. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// CreateUser creates an active, unprivileged account.
//
// The email is required and stored normalized. An empty password gives the
// account an unusable password: it exists, but can only sign in through
// GitHub.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (*model.User, error) {
	return s.create(ctx, &model.User{Email: email, IsActive: true}, password)
}

// CreateSuperuser is CreateUser with IsStaff and IsSuperuser set.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*model.User, error) {
	return s.create(ctx, &model.User{
		Email:       email,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
}

// Register is self-service sign-up. On top of CreateUser's rules it requires
// a password of at least MinPasswordLength characters.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return s.create(ctx, &model.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		IsActive: true,
	}, password)
}

func (s *UserService) create(ctx context.Context, user *model.User, password string) (*model.User, error) {
	user.Email = NormalizeEmail(user.Email)
	if user.Email == "" {
		return nil, apperror.ValidationFailed("email", "users must have an email address")
	}

	if password != "" {
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("email", "a user with this email already exists")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("userID", user.ID),
		slog.Bool("superuser", user.IsSuperuser),
	)
	return user, nil
}

// CheckPassword reports whether plaintext is the user's password.
func (s *UserService) CheckPassword(user *model.User, plaintext string) bool {
	return s.passwords.Verify(user.PasswordHash, plaintext) == nil
}

// Authenticate checks email and password and issues an access token.
// Unknown email, wrong password and inactive account all produce the same
// apperror.ErrUnauthorized so callers cannot probe which emails exist.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	invalid := apperror.Unauthorized("unable to authenticate with provided credentials")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	if !user.IsActive || !s.CheckPassword(user, password) {
		s.logger.Info("failed login", slog.String("userID", user.ID))
		return nil, invalid
	}

	return s.issue(user)
}

// LoginOrRegisterGitHub signs in the account whose email matches the GitHub
// profile, creating one with an unusable password on first login.
func (s *UserService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/user: GitHub user must not be nil")
	}
	email := NormalizeEmail(ghUser.Email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "GitHub account has no verified email address")
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, apperror.Unauthorized("user account is disabled")
		}
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.create(ctx, &model.User{Email: email, Name: ghUser.Name, IsActive: true}, "")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("looking up GitHub user %s: %w", ghUser.Login, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)
	return s.issue(user)
}

func (s *UserService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetByID returns the user with the given ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies a partial update to the user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		if email == "" {
			return nil, apperror.ValidationFailed("email", "users must have an email address")
		}
		user.Email = email
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(*upd.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("email", "a user with this email already exists")
		}
		return nil, fmt.Errorf("updating user %s: %w", id, err)
	}

	s.logger.Info("user profile updated", slog.String("userID", user.ID))
	return user, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d characters or less", auth.MaxPasswordLength))
	}
	return nil
}
