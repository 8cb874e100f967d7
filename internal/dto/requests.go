package dto

import "github.com/elakbay/elakbay/internal/domain"

// LoginRequest represents a password sign-in request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents an account creation request
type SignupRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name" binding:"required"`
}

// SessionResponse represents the current auth state
type SessionResponse struct {
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile"`
	Loading bool            `json:"loading"`
}

// GoogleAuthResponse carries the provider authorize URL to open
type GoogleAuthResponse struct {
	URL string `json:"url"`
}

// RatingRequest represents a rating submission
type RatingRequest struct {
	Value float64 `json:"value" binding:"required"`
}

// CreateItemRequest represents a new destination or product
type CreateItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_urls"`
}

// ShellStateResponse represents the application shell state
type ShellStateResponse struct {
	View              string `json:"view"`
	SelectedProfileID string `json:"selected_profile_id,omitempty"`
	ShowScrollTop     bool   `json:"show_scroll_top"`
	PendingAnchor     string `json:"pending_anchor,omitempty"`
}

// ShellViewRequest switches the shell's top-level view
type ShellViewRequest struct {
	View string `json:"view" binding:"required"`
}

// ShellProfileRequest selects the profile the profile view shows
type ShellProfileRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

// ShellJumpRequest scrolls the home view to an in-page section
type ShellJumpRequest struct {
	Section string `json:"section" binding:"required"`
}

// ShellScrollRequest reports the viewport offset
type ShellScrollRequest struct {
	OffsetY int `json:"offset_y"`
}

// EventRequest represents one analytics event. Type selects which of the
// optional field groups applies.
type EventRequest struct {
	Type     string `json:"type" binding:"required"`
	PagePath string `json:"page_path"`

	// page_view attribution
	UTMSource string `json:"utm_source"`
	UTMMedium string `json:"utm_medium"`
	Referrer  string `json:"referrer"`

	// search_performed / filter_used
	Query       string         `json:"query"`
	Scope       string         `json:"scope"`
	ResultCount *int           `json:"result_count"`
	FilterName  string         `json:"filter_name"`
	FilterValue string         `json:"filter_value"`
	Filters     map[string]any `json:"filters"`

	// content_view
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	OwnerID     string `json:"owner_id"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
