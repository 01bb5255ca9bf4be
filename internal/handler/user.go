package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/service"
)

// UserHandler serves account endpoints:
//   - HandleCreate → POST /user/create
//   - HandleToken  → POST /user/token
//   - HandleMe, HandleUpdateMe → /user/me
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// userResponse never carries the password hash or privilege flags.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type userRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HandleCreate registers a new account.
//
// HTTP: POST /user/create
// REQUEST BODY: {"email": "...", "password": "...", "name": "..."}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), deref(req.Email), deref(req.Password), deref(req.Name))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleToken exchanges email and password for an access token.
//
// HTTP: POST /user/token
// RESPONSE: {"token": "<jwt>"}
func (h *UserHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.users.Authenticate(r.Context(), deref(req.Email), deref(req.Password))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": result.Token})
}

// HandleMe returns the caller's profile.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateMe updates the caller's profile. PATCH applies whichever fields
// are present; PUT replaces the profile and so requires email and password.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if r.Method == http.MethodPut {
		if req.Email == nil {
			writeError(w, h.logger, apperror.ValidationFailed("email", "email is required"))
			return
		}
		if req.Password == nil {
			writeError(w, h.logger, apperror.ValidationFailed("password", "password is required"))
			return
		}
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, service.ProfileUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}
