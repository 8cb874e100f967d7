package supabase

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a call is made without backend credentials.
var ErrNotConfigured = errors.New("supabase credentials are not configured")

// codeNoRows is the PostgREST code for a single-object select with no row.
const codeNoRows = "PGRST116"

// APIError is a structured error from the hosted backend: an HTTP status
// plus the machine code PostgREST or GoTrue attached to the response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (status %d, code %s)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports whether err means "row absent": HTTP 406 from a
// single-object select, or the PGRST116 code. Absence is an expected
// state for callers, distinct from every other backend error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 406 || apiErr.Code == codeNoRows
}
