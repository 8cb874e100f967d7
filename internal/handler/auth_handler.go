package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elakbay/elakbay/internal/dto"
	"github.com/elakbay/elakbay/internal/session"
	"github.com/elakbay/elakbay/internal/supabase"
	"github.com/elakbay/elakbay/internal/utils"
)

// AuthHandler exposes the session coordinator over HTTP
type AuthHandler struct {
	coordinator *session.Coordinator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(coordinator *session.Coordinator) *AuthHandler {
	return &AuthHandler{
		coordinator: coordinator,
	}
}

// Login handles password sign-in. Form validation happens before any
// network call; its messages are returned verbatim.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	form := utils.AuthForm{Email: req.Email, Password: req.Password}
	if msg := utils.ValidateAuthForm(utils.ModeLogin, form); msg != "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: msg,
		})
		return
	}

	if err := h.coordinator.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, supabase.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse())
}

// Signup handles account creation
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	form := utils.AuthForm{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
	}
	if msg := utils.ValidateAuthForm(utils.ModeSignup, form); msg != "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: msg,
		})
		return
	}

	if err := h.coordinator.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, supabase.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, h.sessionResponse())
}

// Logout ends the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.coordinator.SignOut(c.Request.Context()); err != nil {
		// Local state is already cleared; report the revocation failure.
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Signed out successfully."})
}

// Google returns the provider authorize URL to open in a browser
func (h *AuthHandler) Google(c *gin.Context) {
	authURL, err := h.coordinator.SignInWithGoogle()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Service unavailable",
			Message: "Sign-in is unavailable right now.",
		})
		return
	}

	c.JSON(http.StatusOK, dto.GoogleAuthResponse{URL: authURL})
}

// Me returns the current session state
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionResponse())
}

// RefreshProfile re-fetches the profile row for the signed-in user
func (h *AuthHandler) RefreshProfile(c *gin.Context) {
	if err := h.coordinator.RefreshProfile(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse())
}

func (h *AuthHandler) sessionResponse() dto.SessionResponse {
	return dto.SessionResponse{
		User:    h.coordinator.CurrentUser(),
		Profile: h.coordinator.CurrentProfile(),
		Loading: h.coordinator.Loading(),
	}
}
