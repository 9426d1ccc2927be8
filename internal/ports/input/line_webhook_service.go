package input

import (
	"context"

	"repost-bridge/internal/domain"
)

// LineWebhookService interface - Input port (use case)
// Defines what the application can do with LINE webhook events
type LineWebhookService interface {
	// HandleWebhook processes incoming webhook events from LINE.
	// Commands are answered with a reply; repost results are pushed once done.
	HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error
}
