package utils

import "github.com/elakbay/elakbay/internal/domain"

// BuildProfilePayload derives the profile upsert body from session
// metadata: display name, email and avatar, each falling back through the
// metadata variants providers use.
func BuildProfilePayload(user *domain.User) domain.ProfilePayload {
	payload := domain.ProfilePayload{ID: user.ID}

	if name := firstNonEmpty(user.Metadata.FullName, user.Metadata.Name); name != "" {
		payload.FullName = &name
	}
	if user.Email != "" {
		email := user.Email
		payload.Email = &email
	}
	if img := firstNonEmpty(user.Metadata.AvatarURL, user.Metadata.Picture); img != "" {
		payload.ImgURL = &img
	}

	return payload
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
