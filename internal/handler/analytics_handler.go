package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elakbay/elakbay/internal/analytics"
	"github.com/elakbay/elakbay/internal/dto"
	"github.com/elakbay/elakbay/internal/session"
)

// AnalyticsHandler accepts usage events and hands them to the reporter.
// Events are accepted unconditionally; deduplication and privacy gating
// happen inside the reporter and a suppressed event still returns 202.
type AnalyticsHandler struct {
	reporter    *analytics.Reporter
	coordinator *session.Coordinator
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(reporter *analytics.Reporter, coordinator *session.Coordinator) *AnalyticsHandler {
	return &AnalyticsHandler{
		reporter:    reporter,
		coordinator: coordinator,
	}
}

// Track routes one event to the reporter by type
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	var userID string
	if user := h.coordinator.CurrentUser(); user != nil {
		userID = user.ID
	}

	ctx := c.Request.Context()

	switch req.Type {
	case "page_view":
		source, medium := analytics.ResolveSourceMedium(req.UTMSource, req.UTMMedium, req.Referrer, c.Request.Host)
		h.reporter.TrackPageView(ctx, analytics.PageView{
			UserID:   userID,
			PagePath: req.PagePath,
			Source:   source,
			Medium:   medium,
		})
	case "search_performed":
		h.reporter.TrackSearch(ctx, analytics.Search{
			UserID:      userID,
			PagePath:    req.PagePath,
			Query:       req.Query,
			Scope:       req.Scope,
			ResultCount: req.ResultCount,
			Filters:     req.Filters,
		})
	case "filter_used":
		h.reporter.TrackFilter(ctx, analytics.Filter{
			UserID:      userID,
			PagePath:    req.PagePath,
			Scope:       req.Scope,
			FilterName:  req.FilterName,
			FilterValue: req.FilterValue,
			Filters:     req.Filters,
		})
	case "content_view":
		h.reporter.TrackContentView(ctx, analytics.ContentView{
			UserID:      userID,
			PagePath:    req.PagePath,
			ContentType: req.ContentType,
			ContentID:   req.ContentID,
			OwnerID:     req.OwnerID,
		})
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "unknown event type: " + req.Type,
		})
		return
	}

	c.JSON(http.StatusAccepted, dto.SuccessResponse{Message: "Accepted."})
}
