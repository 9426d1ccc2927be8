package output

import (
	"context"

	"repost-bridge/internal/domain"
)

// SocialClient interface - Output port
// Defines what the application needs from a Mastodon instance before a user is logged in.
type SocialClient interface {
	// RegisterApp registers a fresh app on the instance and returns its
	// client credentials and authorize URL.
	RegisterApp(ctx context.Context, request domain.AppRegistrationRequest) (*domain.AppRegistration, error)

	// ExchangeCode exchanges an authorization code for an access token.
	ExchangeCode(ctx context.Context, app domain.AppRegistration, code string) (string, error)

	// MediaClient returns a client bound to a user's access token and instance.
	// The client is meant for a single repost and is not cached.
	MediaClient(record domain.UserRecord) MediaClient
}

// MediaClient interface - Output port
// Defines what the repost pipeline needs from a logged in Mastodon account.
// Implementations must be safe for concurrent use by the attachment units.
type MediaClient interface {
	// UploadMedia uploads the file at path and returns the media ID.
	UploadMedia(ctx context.Context, path string) (string, error)

	// MediaReady queries the processing state of an uploaded media.
	MediaReady(ctx context.Context, mediaID string) (bool, error)

	// PostStatus creates a status with the given text and media and returns its public URL.
	PostStatus(ctx context.Context, text string, mediaIDs []string) (string, error)
}
