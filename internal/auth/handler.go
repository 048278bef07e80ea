package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/notes-api/internal/httputil"
	"github.com/redmonkez12/notes-api/internal/logging"
	"github.com/redmonkez12/notes-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service      *Service
	isProduction bool
}

func NewHandler(service *Service, isProduction bool) *Handler {
	return &Handler{
		service:      service,
		isProduction: isProduction,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses. The password hash and
// refresh token are never serialized.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	Message     string       `json:"message"`
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// RefreshResponse is returned by a successful token refresh
type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// MessageResponse is a bare message body
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse is returned by the cookie-authenticated identity endpoint
type MeResponse struct {
	User UserResponse `json:"user"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account and start a session for it
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing email or password"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	newUser, pair, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrCredentialsRequired) {
			logger.Warn("registration failed: missing credentials")
			httputil.RespondError(w, "Email and password are required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists", "email", req.Email)
			httputil.RespondError(w, "User with this email already exists", http.StatusConflict)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	SetRefreshTokenCookie(w, pair.RefreshToken, h.isProduction, h.service.RefreshTokenDuration())
	httputil.RespondJSON(w, SessionResponse{
		Message:     "User registered successfully",
		User:        toUserResponse(newUser),
		AccessToken: pair.AccessToken,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive an access token plus a refresh cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing email or password"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	existingUser, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrCredentialsRequired) {
			logger.Warn("login failed: missing credentials")
			httputil.RespondError(w, "Email and password are required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			// Unknown email and wrong password produce identical responses
			logger.Warn("login failed: invalid credentials")
			httputil.RespondError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", existingUser.ID)

	SetRefreshTokenCookie(w, pair.RefreshToken, h.isProduction, h.service.RefreshTokenDuration())
	httputil.RespondJSON(w, SessionResponse{
		Message:     "Login successful",
		User:        toUserResponse(existingUser),
		AccessToken: pair.AccessToken,
	}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Clear the stored refresh token and the cookie. Never fails.
// @Tags         auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if refreshToken, err := GetRefreshTokenFromCookie(r); err == nil {
		h.service.Logout(r.Context(), refreshToken)
	}

	// Logout is idempotent: the cookie is cleared and the response is 200
	// whether or not a valid token was presented.
	ClearRefreshTokenCookie(w)

	logger.Info("user logged out")

	httputil.RespondJSON(w, MessageResponse{Message: "Logout successful"}, http.StatusOK)
}

// Refresh handles access token refresh
// @Summary      Refresh access token
// @Description  Exchange the refresh cookie for a new token pair; the previous refresh token is invalidated
// @Tags         auth
// @Produce      json
// @Success      200 {object} RefreshResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid refresh token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	refreshToken, err := GetRefreshTokenFromCookie(r)
	if err != nil || refreshToken == "" {
		logger.Warn("refresh failed: no cookie")
		httputil.RespondError(w, "Refresh token not provided", http.StatusUnauthorized)
		return
	}

	pair, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			logger.Warn("refresh failed: invalid or superseded token")
			httputil.RespondError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		logger.Error("refresh failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("access token refreshed")

	SetRefreshTokenCookie(w, pair.RefreshToken, h.isProduction, h.service.RefreshTokenDuration())
	httputil.RespondJSON(w, RefreshResponse{
		Message:     "Token refreshed successfully",
		AccessToken: pair.AccessToken,
	}, http.StatusOK)
}

// Me returns the identity resolved by the session gate
// @Summary      Current user
// @Description  Resolve the refresh cookie to the logged-in user
// @Tags         auth
// @Produce      json
// @Success      200 {object} MeResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid refresh token"
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "No refresh token provided", http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, MeResponse{
		User: UserResponse{
			ID:        identity.ID,
			Email:     identity.Email,
			CreatedAt: identity.CreatedAt,
		},
	}, http.StatusOK)
}
