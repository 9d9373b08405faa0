package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/api/response"
	"github.com/daap14/teamboard/internal/auth"
	"github.com/daap14/teamboard/internal/user"
)

// RefreshTokenCookie holds the refresh token for browser clients.
const RefreshTokenCookie = "refresh_token"

const refreshCookiePath = "/api/v1/auth"

// AuthService is the subset of auth.Service the handler needs.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Me(ctx context.Context, userID uuid.UUID) (*user.User, error)
}

// CookieConfig controls the auth cookies set on login and refresh.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,nonblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"createdAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

type loginResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	svc     AuthService
	cookies CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req registerRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	u, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "CONFLICT", "Email already registered", requestID)
			return
		}
		response.Internal(w, err, "Failed to register user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(u), requestID)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if !decodeAndValidate(w, r, &req, requestID) {
		return
	}

	u, pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", requestID)
			return
		}
		response.Internal(w, err, "Failed to log in", requestID)
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, pair.AccessToken, "/", h.cookies.AccessTTL)
	h.setCookie(w, RefreshTokenCookie, pair.RefreshToken, refreshCookiePath, h.cookies.RefreshTTL)

	response.Success(w, http.StatusOK, loginResponse{
		User:        toUserResponse(u),
		AccessToken: pair.AccessToken,
	}, requestID)
}

// Refresh handles POST /auth/refresh. The refresh token is read from its
// cookie, or from the JSON body for non-browser clients.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var raw string
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		raw = c.Value
	} else if r.ContentLength != 0 {
		var req refreshRequest
		if !decodeAndValidate(w, r, &req, requestID) {
			return
		}
		raw = req.RefreshToken
	}

	if raw == "" {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token is required", requestID)
		return
	}

	access, err := h.svc.Refresh(r.Context(), raw)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired refresh token", requestID)
			return
		}
		response.Internal(w, err, "Failed to refresh token", requestID)
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, access, "/", h.cookies.AccessTTL)
	response.Success(w, http.StatusOK, refreshResponse{AccessToken: access}, requestID)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := actor(w, r, requestID)
	if !ok {
		return
	}

	u, err := h.svc.Me(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		response.Internal(w, err, "Failed to load user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Logout handles POST /auth/logout by expiring both cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, middleware.AccessTokenCookie, "", "/", -1)
	h.setCookie(w, RefreshTokenCookie, "", refreshCookiePath, -1)
	response.NoContent(w)
}

// setCookie writes an HttpOnly cookie. A negative ttl deletes it.
func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value, path string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
