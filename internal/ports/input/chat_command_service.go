package input

import (
	"context"

	"repost-bridge/internal/domain"
)

// ChatCommandService interface - Input port (use case)
// Command boundary shared by every chat gateway. Failures are logged server-side
// and answered with a fixed user-safe text.
type ChatCommandService interface {
	Login(ctx context.Context, chatUserID, instanceHost string) domain.CommandReply
	Logout(ctx context.Context, chatUserID string) domain.CommandReply
	Repost(ctx context.Context, request domain.RepostRequest) domain.CommandReply
}
