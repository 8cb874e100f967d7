// Package shell holds the application shell: which top-level view is
// shown, its persistence, and scroll coordination with the rendered page.
package shell

import (
	"sync"
	"time"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/pkg/storage"
	"go.uber.org/zap"
)

// Storage keys for the shell's persisted choices.
const (
	viewStorageKey    = "elakbay:view"
	profileStorageKey = "elakbay:profileId"
)

// Scroller is the viewport the shell drives. The UI layer implements it;
// tests record calls.
type Scroller interface {
	// ResetToTop jumps to the origin without animation.
	ResetToTop()
	// ScrollToSection smooth-scrolls to an in-page section.
	ScrollToSection(id string)
}

// SectionFinder reports whether a section with the given id is rendered.
type SectionFinder interface {
	SectionExists(id string) bool
}

// Options tune the shell's scroll behavior.
type Options struct {
	// ScrollTopThreshold is the scroll offset past which the
	// scroll-to-top affordance shows.
	ScrollTopThreshold int
	// AnchorPollDelay is the wait between attempts to find a pending
	// anchor section.
	AnchorPollDelay time.Duration
	// AnchorPollAttempts bounds the anchor polling before giving up.
	AnchorPollAttempts int
	// Sleep overrides the polling sleep; tests pass a no-op.
	Sleep func(d time.Duration)
}

// Router owns the current view and selected profile id, persists both,
// enforces the view invariants, and defers anchor scrolling until the
// target section has rendered.
type Router struct {
	store    storage.Store
	scroller Scroller
	finder   SectionFinder
	logger   *zap.Logger
	opts     Options

	mu               sync.Mutex
	view             domain.View
	selectedProfile  string
	authenticated    bool
	lastScrollKey    string
	hasScrollKey     bool
	pendingAnchor    string
	showScrollTop    bool
	pollGeneration   int
}

// NewRouter restores the shell from persisted storage: the last view when
// it is one of the five valid values (else home), and the selected profile
// id verbatim. Invariants are enforced immediately, so a restored
// dashboard without a session lands on home.
func NewRouter(store storage.Store, scroller Scroller, finder SectionFinder, logger *zap.Logger, opts Options) *Router {
	if opts.ScrollTopThreshold <= 0 {
		opts.ScrollTopThreshold = 640
	}
	if opts.AnchorPollDelay <= 0 {
		opts.AnchorPollDelay = 120 * time.Millisecond
	}
	if opts.AnchorPollAttempts <= 0 {
		opts.AnchorPollAttempts = 10
	}
	if opts.Sleep == nil {
		opts.Sleep = func(d time.Duration) { time.Sleep(d) }
	}

	r := &Router{
		store:    store,
		scroller: scroller,
		finder:   finder,
		logger:   logger,
		opts:     opts,
		view:     domain.ViewHome,
	}

	if stored, ok := store.Get(viewStorageKey); ok {
		if view, valid := domain.ParseView(stored); valid {
			r.view = view
		}
	}
	if stored, ok := store.Get(profileStorageKey); ok {
		r.selectedProfile = stored
	}

	r.mu.Lock()
	r.applyLocked()
	r.mu.Unlock()

	return r
}

// View returns the current view.
func (r *Router) View() domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// SelectedProfileID returns the selected profile id, or "" when none.
func (r *Router) SelectedProfileID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectedProfile
}

// ShowScrollTop reports whether the scroll-to-top affordance is visible.
func (r *Router) ShowScrollTop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.showScrollTop
}

// SetAuthenticated records session presence and re-checks the invariants;
// losing the session while on the dashboard drops back to home.
func (r *Router) SetAuthenticated(authenticated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.authenticated = authenticated
	r.applyLocked()
}

// SetView switches the top-level view.
func (r *Router) SetView(view domain.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.view = view
	r.applyLocked()
}

// SelectProfile records the profile to show and switches to the profile view.
func (r *Router) SelectProfile(profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selectedProfile = profileID
	r.view = domain.ViewProfile
	r.applyLocked()
}

// ClearProfile forgets the selected profile. If the profile view was
// showing it, the invariant pass sends the shell home.
func (r *Router) ClearProfile() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selectedProfile = ""
	r.applyLocked()
}

// applyLocked enforces the view invariants, persists the outcome, and
// schedules a scroll reset when the (view, profile) pair changed.
func (r *Router) applyLocked() {
	if r.view == domain.ViewDashboard && !r.authenticated {
		r.view = domain.ViewHome
	}
	if r.view == domain.ViewProfile && r.selectedProfile == "" {
		r.view = domain.ViewHome
	}

	if err := r.store.Set(viewStorageKey, string(r.view)); err != nil {
		r.logger.Warn("Failed to persist view", zap.Error(err))
	}
	if r.selectedProfile != "" {
		if err := r.store.Set(profileStorageKey, r.selectedProfile); err != nil {
			r.logger.Warn("Failed to persist selected profile", zap.Error(err))
		}
	} else {
		if err := r.store.Delete(profileStorageKey); err != nil {
			r.logger.Warn("Failed to clear selected profile", zap.Error(err))
		}
	}

	// Reset only when the composite key moves; unrelated updates must
	// not yank the viewport back to the top.
	key := string(r.view) + ":" + r.selectedProfile
	if !r.hasScrollKey || r.lastScrollKey != key {
		r.lastScrollKey = key
		r.hasScrollKey = true
		r.scroller.ResetToTop()
	}
}

// HandleScroll tracks the viewport offset and toggles the scroll-to-top
// affordance past the threshold.
func (r *Router) HandleScroll(offsetY int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showScrollTop = offsetY > r.opts.ScrollTopThreshold
}

// JumpToSection forces the home view and records the section as a pending
// anchor target. Navigating home does not render its sections
// synchronously, so a poller waits for the target: found within the
// attempt budget means a smooth scroll, exhausted means the pending id is
// silently dropped.
func (r *Router) JumpToSection(id string) {
	r.mu.Lock()
	if r.view != domain.ViewHome {
		r.view = domain.ViewHome
		r.applyLocked()
	}
	r.pendingAnchor = id
	r.pollGeneration++
	generation := r.pollGeneration
	r.mu.Unlock()

	go r.resolvePendingAnchor(generation)
}

func (r *Router) resolvePendingAnchor(generation int) {
	for attempt := 0; ; attempt++ {
		r.mu.Lock()
		if r.pollGeneration != generation || r.pendingAnchor == "" || r.view != domain.ViewHome {
			r.mu.Unlock()
			return
		}
		id := r.pendingAnchor
		r.mu.Unlock()

		if r.finder.SectionExists(id) {
			r.mu.Lock()
			stillPending := r.pollGeneration == generation && r.pendingAnchor == id
			if stillPending {
				r.pendingAnchor = ""
			}
			r.mu.Unlock()

			if stillPending {
				r.scroller.ScrollToSection(id)
			}
			return
		}

		if attempt >= r.opts.AnchorPollAttempts {
			r.mu.Lock()
			if r.pollGeneration == generation {
				r.pendingAnchor = ""
			}
			r.mu.Unlock()
			return
		}

		r.opts.Sleep(r.opts.AnchorPollDelay)
	}
}

// PendingAnchor returns the section id still waiting for its target, or "".
func (r *Router) PendingAnchor() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingAnchor
}
