package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/allmight/taskapp/internal/middleware"
	"github.com/allmight/taskapp/internal/model"
	"github.com/allmight/taskapp/internal/service"
)

// UserHandler handles user account endpoints
type UserHandler struct {
	authService   *service.AuthService
	userService   *service.UserService
	avatarService *service.AvatarService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *service.AuthService, userService *service.UserService, avatarService *service.AvatarService) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		avatarService: avatarService,
	}
}

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Age      int    `json:"age,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses. The password hash,
// session tokens and avatar bytes never appear here.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Email     string `json:"email"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
}

// AuthResponse pairs a user with a freshly issued token
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Age:       user.Age,
		Email:     user.Email,
		CreatedOn: user.CreatedOn.Format(time.RFC3339),
		UpdatedOn: user.UpdatedOn.Format(time.RFC3339),
	}
}

// Register handles POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterRequest{
		Name:     req.Name,
		Age:      req.Age,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, AuthResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Login handles POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, AuthResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Logout handles POST /users/logout. Only the session the request was
// authenticated with is revoked.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	token := middleware.GetToken(r.Context())

	if err := h.authService.Logout(r.Context(), user.ID, token); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.authService.LogoutAll(r.Context(), user.ID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PATCH /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	updates, err := DecodeRawFields(r)
	if err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	updated, err := h.userService.Update(r.Context(), user, updates)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// DeleteMe handles DELETE /users/me. The user's tasks are removed along
// with the account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.userService.Delete(r.Context(), user); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// UploadAvatar handles POST /users/me/avatar. Expects a multipart form
// with the image under the "avatar" field.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxAvatarBytes)
	if err := r.ParseMultipartForm(model.MaxAvatarBytes); err != nil {
		WriteError(w, model.NewBadRequestError("avatar upload exceeds the size limit or is not multipart"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		WriteError(w, model.NewBadRequestError("missing avatar file"))
		return
	}
	defer func() { _ = file.Close() }()

	if !service.AllowedFilename(header.Filename) {
		WriteError(w, model.NewBadRequestError("avatar must be a jpg, jpeg or png image"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, model.NewBadRequestError("unable to read avatar file"))
		return
	}

	if err := h.avatarService.Set(r.Context(), user.ID, data); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.avatarService.Clear(r.Context(), user.ID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles GET /users/{id}/avatar. Avatars are public: any
// user's stored image can be fetched by ID without authentication.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !strings.HasPrefix(id, "user:") {
		id = "user:" + id
	}

	data, err := h.avatarService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
