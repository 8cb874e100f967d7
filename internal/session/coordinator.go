package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/internal/retry"
	"github.com/elakbay/elakbay/internal/supabase"
	"github.com/elakbay/elakbay/internal/utils"
	"go.uber.org/zap"
)

// Options tune the profile-ensure retry loop.
type Options struct {
	// FetchAttempts bounds the profile lookup retries per sequence.
	FetchAttempts int
	// FetchDelay is the linear backoff base between attempts.
	FetchDelay time.Duration
	// RedirectOrigin is the OAuth callback target for provider sign-in.
	RedirectOrigin string
	// Sleep overrides the retry sleep; tests pass a no-op.
	Sleep retry.SleepFunc
}

// Coordinator owns current-user and profile state. It hydrates from the
// persisted session, follows auth-change notifications, and guarantees a
// profile row exists for every authenticated user.
//
// Hydrate and the Watch loop may interleave; both run the same sync and
// the last write wins. That ordering is deliberately loose (a momentary
// flicker, not a correctness problem).
type Coordinator struct {
	auth     AuthGateway
	profiles ProfileRepository
	notifier Notifier
	logger   *zap.Logger
	opts     Options

	mu      sync.Mutex
	user    *domain.User
	profile *domain.Profile
	loading bool
}

// NewCoordinator wires the coordinator. Loading starts true and stays true
// until the first hydration settles.
func NewCoordinator(auth AuthGateway, profiles ProfileRepository, notifier Notifier, logger *zap.Logger, opts Options) *Coordinator {
	if opts.FetchAttempts <= 0 {
		opts.FetchAttempts = 4
	}
	if opts.FetchDelay <= 0 {
		opts.FetchDelay = 250 * time.Millisecond
	}
	if opts.Sleep == nil {
		opts.Sleep = retry.Sleep
	}

	return &Coordinator{
		auth:     auth,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		loading:  true,
	}
}

// CurrentUser returns the session user, or nil when signed out.
func (c *Coordinator) CurrentUser() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// CurrentProfile returns the loaded profile, or nil.
func (c *Coordinator) CurrentProfile() *domain.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// Loading reports whether hydration or sign-out is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Hydrate restores user and profile state from the persisted session.
// Without backend credentials it settles to signed-out. Profile failures
// surface as a notification and leave the profile absent; nothing here is
// fatal. The loading flag is always cleared before returning.
func (c *Coordinator) Hydrate(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	if !c.auth.Configured() {
		c.setState(nil, nil)
		return
	}

	session, err := c.auth.CurrentSession(ctx)
	if err != nil {
		c.logger.Error("Failed to hydrate session", zap.Error(err))
		c.notifier.Error("Failed to restore your session.")
		c.setState(nil, nil)
		return
	}

	var user *domain.User
	if session != nil {
		user = session.User
	}

	c.syncUser(ctx, user)
}

// Watch follows auth-change notifications until ctx is done, repeating the
// same user/profile sync for every event. It runs independently of Hydrate.
func (c *Coordinator) Watch(ctx context.Context) {
	changes, unsubscribe := c.auth.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}

			var user *domain.User
			if change.Session != nil {
				user = change.Session.User
			}
			c.syncUser(ctx, user)
			c.setLoading(false)
		}
	}
}

// syncUser applies one observed session user: sets it current, then makes
// sure an authenticated user has a profile row.
func (c *Coordinator) syncUser(ctx context.Context, user *domain.User) {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	if user == nil {
		c.setProfile(nil)
		return
	}

	profile, err := c.ensureProfile(ctx, user)
	if err != nil {
		c.logger.Error("Failed to load profile", zap.String("user_id", user.ID), zap.Error(err))
		c.notifier.Error("Failed to load your profile.")
		c.setProfile(nil)
		return
	}
	c.setProfile(profile)
}

// ensureProfile guarantees a profile row for user: bounded-retry fetch,
// then one upsert from session metadata when every attempt came back
// cleanly absent, then one more retry sequence. An error is returned only
// when the lookup never produced a row and at least one attempt failed.
func (c *Coordinator) ensureProfile(ctx context.Context, user *domain.User) (*domain.Profile, error) {
	existing, err := c.fetchProfileWithRetry(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	payload := utils.BuildProfilePayload(user)
	if err := c.profiles.UpsertProfile(ctx, payload); err != nil {
		return nil, err
	}

	return c.fetchProfileWithRetry(ctx, user.ID)
}

func (c *Coordinator) fetchProfileWithRetry(ctx context.Context, userID string) (*domain.Profile, error) {
	return retry.Fetch(ctx, c.opts.FetchAttempts, retry.Linear(c.opts.FetchDelay), c.opts.Sleep,
		func(ctx context.Context) (*domain.Profile, error) {
			return c.profiles.FetchProfile(ctx, userID)
		})
}

// SignIn authenticates with normalized credentials. State updates arrive
// through the auth-change subscription, not here.
func (c *Coordinator) SignIn(ctx context.Context, email, password string) error {
	if _, err := c.auth.SignInWithPassword(ctx, utils.NormalizeEmail(email), password); err != nil {
		c.notifier.Error(err.Error())
		return err
	}

	c.notifier.Success("Welcome back!")
	return nil
}

// SignInWithGoogle returns the provider authorize URL pointed back at the
// configured redirect origin. The caller opens it; the session lands via
// the OAuth callback.
func (c *Coordinator) SignInWithGoogle() (string, error) {
	if !c.auth.Configured() {
		c.notifier.Error("Sign-in is unavailable right now.")
		return "", supabase.ErrNotConfigured
	}

	return c.auth.AuthorizeURL("google", c.opts.RedirectOrigin), nil
}

// SignUp creates an account with the full name in session metadata, then
// explicitly upserts the profile row and tries to load it. A failed load
// is tolerated with a warning; the account itself is already created.
func (c *Coordinator) SignUp(ctx context.Context, email, password, fullName string) error {
	fullName = strings.TrimSpace(fullName)

	sess, err := c.auth.SignUp(ctx, utils.NormalizeEmail(email), password, map[string]any{
		"full_name": fullName,
	})
	if err != nil {
		c.notifier.Error(err.Error())
		return err
	}

	if sess != nil && sess.User != nil {
		payload := domain.ProfilePayload{ID: sess.User.ID}
		if fullName != "" {
			payload.FullName = &fullName
		}
		if sess.User.Email != "" {
			email := sess.User.Email
			payload.Email = &email
		}

		if err := c.profiles.UpsertProfile(ctx, payload); err != nil {
			c.notifier.Error(err.Error())
			return err
		}

		profile, err := c.fetchProfileWithRetry(ctx, sess.User.ID)
		if err != nil {
			c.logger.Error("Failed to load profile after signup", zap.Error(err))
			c.notifier.Error("Account created, but profile failed to load.")
		} else {
			c.setProfile(profile)
		}
	}

	c.notifier.Success("Account created successfully.")
	return nil
}

// SignOut optimistically clears local state and then revokes the session.
// A backend failure is reported but never reverts the local clear; the
// local session is over either way.
func (c *Coordinator) SignOut(ctx context.Context) error {
	c.setLoading(true)
	defer c.setLoading(false)

	c.setState(nil, nil)

	if err := c.auth.SignOut(ctx); err != nil {
		c.logger.Error("Failed to sign out", zap.Error(err))
		c.notifier.Error("Failed to sign out.")
		return err
	}

	c.notifier.Success("Signed out successfully.")
	return nil
}

// RefreshProfile re-runs the bounded-retry fetch (no upsert) and replaces
// profile state. No-op when signed out.
func (c *Coordinator) RefreshProfile(ctx context.Context) error {
	user := c.CurrentUser()
	if user == nil {
		return nil
	}

	profile, err := c.fetchProfileWithRetry(ctx, user.ID)
	if err != nil {
		c.logger.Error("Failed to refresh profile", zap.Error(err))
		c.notifier.Error("Failed to refresh your profile.")
		return err
	}

	c.setProfile(profile)
	return nil
}

func (c *Coordinator) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}

func (c *Coordinator) setProfile(profile *domain.Profile) {
	c.mu.Lock()
	c.profile = profile
	c.mu.Unlock()
}

func (c *Coordinator) setState(user *domain.User, profile *domain.Profile) {
	c.mu.Lock()
	c.user = user
	c.profile = profile
	c.mu.Unlock()
}
