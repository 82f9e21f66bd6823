package handlers

import (
	"errors"
	"net/http"
	"time"

	apierrors "github.com/Vroy4298/land-tax-system/internal/errors"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/Vroy4298/land-tax-system/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=32"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a bearer token and the account it belongs to.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func toAuthResponse(r *services.AuthResult) AuthResponse {
	return AuthResponse{Token: r.Token, ExpiresAt: r.ExpiresAt, User: r.User}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			apierrors.Conflict(c, "An account with this email already exists")
			return
		}
		apierrors.InternalServerError(c, "Failed to register user", err)
		return
	}

	c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.Unauthorized(c, "Invalid email or password")
			return
		}
		apierrors.InternalServerError(c, "Failed to log in", err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(result))
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	u, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		// A valid token for a deleted account.
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.Unauthorized(c, "Account no longer exists")
			return
		}
		apierrors.InternalServerError(c, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}
