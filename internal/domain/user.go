package domain

import "time"

// UserMetadata carries the identity fields the auth service attaches to a
// user at sign-up or through an OAuth provider.
type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Picture   string `json:"picture,omitempty"`
}

// User is the read-projection of the externally issued session user.
type User struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	Metadata UserMetadata `json:"user_metadata"`
}

// Session is an externally issued proof of authentication. The client holds
// it only for bearer headers and claims; the auth service owns its lifecycle.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// Expired reports whether the access token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Profile is the application-level record elaborating a session user.
// Exactly one row exists per authenticated user once hydration completes.
type Profile struct {
	ID        string  `json:"id"`
	FullName  *string `json:"full_name"`
	Role      *string `json:"role"`
	CreatedAt *string `json:"created_at"`
	Email     *string `json:"email"`
	ImgURL    *string `json:"img_url"`
	BattleCry *string `json:"battle_cry"`
}

// ProfilePayload is the upsert body used when a profile row is missing,
// derived from session metadata.
type ProfilePayload struct {
	ID       string  `json:"id"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	ImgURL   *string `json:"img_url,omitempty"`
}
