package supabase

import (
	"context"

	"github.com/elakbay/elakbay/internal/domain"
)

const profilesTable = "profiles"

// FetchProfile reads the profile row for a user. A missing row returns
// (nil, nil): absence is an expected state, not an error.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := c.SelectSingle(ctx, profilesTable, "*", Eq("id", userID), &profile)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates or merges a profile row keyed by user id.
func (c *Client) UpsertProfile(ctx context.Context, payload domain.ProfilePayload) error {
	return c.Upsert(ctx, profilesTable, "id", payload)
}
