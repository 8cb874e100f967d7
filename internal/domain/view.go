package domain

// View is the top-level page rendered by the application shell.
type View string

const (
	ViewHome         View = "home"
	ViewDashboard    View = "dashboard"
	ViewDestinations View = "destinations"
	ViewProfile      View = "profile"
	ViewProducts     View = "products"
)

// ParseView maps a stored string to a View. Anything outside the five
// valid values reports false and the caller falls back to home.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewHome, ViewDashboard, ViewDestinations, ViewProfile, ViewProducts:
		return View(s), true
	default:
		return ViewHome, false
	}
}
