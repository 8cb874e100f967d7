package session

import (
	"context"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/internal/supabase"
)

// AuthGateway is the slice of the hosted auth service the coordinator uses.
type AuthGateway interface {
	Configured() bool
	CurrentSession(ctx context.Context) (*domain.Session, error)
	Subscribe() (<-chan supabase.AuthChange, func())
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error)
	SignOut(ctx context.Context) error
	AuthorizeURL(provider, redirectTo string) string
}

// ProfileRepository reads and writes profile rows keyed by user id.
type ProfileRepository interface {
	FetchProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, payload domain.ProfilePayload) error
}

// Notifier surfaces one-line user-visible notifications. None of them are
// fatal; the worst outcome is staying signed out or profile missing.
type Notifier interface {
	Success(message string)
	Error(message string)
}
