package output

import (
	"context"

	"repost-bridge/internal/domain"
)

// UserRecordStore interface - Output port
// Defines what the application needs for persisting per chat user Mastodon credentials.
// Implementations must be thread-safe and durable across restarts.
type UserRecordStore interface {
	// GetUserRecord retrieves the record of a chat user.
	// Returns nil if the user never logged in or logged out.
	// Returns an error only if there is a storage access failure.
	GetUserRecord(ctx context.Context, chatUserID string) (*domain.UserRecord, error)

	// PutUserRecord creates or overwrites the record of a chat user.
	PutUserRecord(ctx context.Context, chatUserID string, record domain.UserRecord) error

	// DeleteUserRecord logs a chat user out. The key is kept with a null
	// record (tombstone) rather than removed; GetUserRecord reports it as absent.
	// This operation is idempotent.
	DeleteUserRecord(ctx context.Context, chatUserID string) error

	// Ping checks that the underlying storage is reachable.
	Ping(ctx context.Context) error
}
