package transport

import (
	"net/http"

	"electro-shop/internal/domain"
	"electro-shop/internal/middleware"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	UserID      string `json:"userID" validate:"required"`
}

type ChangePasswordRequest struct {
	Password        string  `json:"password" validate:"required,min=6,max=72"`
	CurrentPassword *string `json:"currentPassword"`
}

type RoleRequest struct {
	UserRole domain.Role `json:"userRole" validate:"required,oneof=user admin"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *domain.User `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserGuards are the middleware protecting user routes.
type UserGuards struct {
	Auth          Guard
	Admin         Guard
	SelfOrAdmin   Guard // checks the {id} URL parameter
	LoginLimit    Guard
	RecoveryLimit Guard
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	responder
	userService service.UserService
	guards      UserGuards
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, guards UserGuards, logger *zap.Logger, debug bool) *UserHandler {
	return &UserHandler{
		responder:   responder{logger: logger, debug: debug},
		userService: userService,
		guards:      guards,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/find/user", h.Find)

		h.guards.LoginLimit.wrap(r).Post("/login", h.Login)
		h.guards.RecoveryLimit.wrap(r).Post("/forgot-password", h.ForgotPassword)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r = h.guards.Auth.wrap(r)
			r.Get("/me", h.Me)
			h.guards.Admin.wrap(r).Patch("/{id}/role", h.UpdateRole)
			h.guards.SelfOrAdmin.wrap(r).Patch("/{id}/password", h.ChangePassword)
		})

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

// Find handles GET /find/user?username=|email=
func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user, err := h.userService.FindUser(r.Context(), q.Get("username"), q.Get("email"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

// Create handles sign-up
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.UserInput
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("User registered successfully", zap.Int64("user_number", user.UserNumber))
	h.created(w, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UserInput
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	accessToken, refreshToken, user, err := h.userService.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("User logged in successfully", zap.Int64("user_number", user.UserNumber))
	h.ok(w, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// Logout handles user logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

// RefreshToken handles token refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	accessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, RefreshResponse{AccessToken: accessToken})
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userNumber, ok := middleware.GetUserNumber(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), id, req.UserRole)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("User role changed",
		zap.Int64("user_number", id),
		zap.String("role", string(req.UserRole)),
	)
	h.ok(w, user)
}

// ForgotPassword returns a one-time temporary password
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	password, err := h.userService.ForgotPassword(r.Context(), req.Email, req.PhoneNumber, req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, map[string]string{"password": password})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), id, req.Password, req.CurrentPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}
