package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/internal/dto"
	"github.com/elakbay/elakbay/internal/session"
	"github.com/elakbay/elakbay/internal/shell"
)

// ShellHandler exposes the application shell over HTTP. Session presence
// is synced into the router before every mutation, so the dashboard
// invariant holds no matter how the session changed in between.
type ShellHandler struct {
	router      *shell.Router
	coordinator *session.Coordinator
}

// NewShellHandler creates a new shell handler
func NewShellHandler(router *shell.Router, coordinator *session.Coordinator) *ShellHandler {
	return &ShellHandler{
		router:      router,
		coordinator: coordinator,
	}
}

// State returns the current shell state
func (h *ShellHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// SetView switches the top-level view. Invalid names are rejected; the
// invariants may still land the shell somewhere other than the request
// asked for, and the response reports where it actually went.
func (h *ShellHandler) SetView(c *gin.Context) {
	var req dto.ShellViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	view, ok := domain.ParseView(req.View)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "unknown view: " + req.View,
		})
		return
	}

	h.syncAuth()
	h.router.SetView(view)
	c.JSON(http.StatusOK, h.state())
}

// SelectProfile records the profile to show and switches to the profile view
func (h *ShellHandler) SelectProfile(c *gin.Context) {
	var req dto.ShellProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	h.syncAuth()
	h.router.SelectProfile(req.ProfileID)
	c.JSON(http.StatusOK, h.state())
}

// ClearProfile forgets the selected profile
func (h *ShellHandler) ClearProfile(c *gin.Context) {
	h.syncAuth()
	h.router.ClearProfile()
	c.JSON(http.StatusOK, h.state())
}

// Jump forces the home view and scrolls to a section once it renders
func (h *ShellHandler) Jump(c *gin.Context) {
	var req dto.ShellJumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	h.syncAuth()
	h.router.JumpToSection(req.Section)
	c.JSON(http.StatusAccepted, h.state())
}

// Scroll reports the viewport offset and toggles the scroll-top affordance
func (h *ShellHandler) Scroll(c *gin.Context) {
	var req dto.ShellScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	h.router.HandleScroll(req.OffsetY)
	c.JSON(http.StatusOK, h.state())
}

func (h *ShellHandler) syncAuth() {
	h.router.SetAuthenticated(h.coordinator.CurrentUser() != nil)
}

func (h *ShellHandler) state() dto.ShellStateResponse {
	return dto.ShellStateResponse{
		View:              string(h.router.View()),
		SelectedProfileID: h.router.SelectedProfileID(),
		ShowScrollTop:     h.router.ShowScrollTop(),
		PendingAnchor:     h.router.PendingAnchor(),
	}
}
