package input

import (
	"context"

	"repost-bridge/internal/domain"
)

// RepostService interface - Input port (use case)
// Republishes a chat message and its attachments as a Mastodon status
type RepostService interface {
	// Run uploads every attachment and posts the status, returning its public URL.
	// No status is posted unless every attachment was uploaded and processed.
	Run(ctx context.Context, request domain.RepostRequest) (string, error)
}
