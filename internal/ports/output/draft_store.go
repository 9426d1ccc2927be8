package output

import "repost-bridge/internal/domain"

// DraftStore interface - Output port
// Defines what the LINE gateway needs for assembling repost drafts.
// Drafts are kept per LINE user because LINE has no message-context commands.
// Implementations must be thread-safe for concurrent access.
type DraftStore interface {
	// GetDraft retrieves a copy of the draft of a LINE user.
	// Returns nil if the draft does not exist or has expired.
	// Returns an error only if there is a storage access failure.
	GetDraft(userID string) (*domain.RepostDraft, error)

	// ModifyDraft applies change to the user's draft, creating an empty one
	// from the store's draft settings if none is live. Concurrent calls for
	// the same user are serialized. Returns a copy of the updated draft.
	ModifyDraft(userID string, change func(draft *domain.RepostDraft)) (*domain.RepostDraft, error)

	// DeleteDraft removes a draft by LINE user ID.
	// This operation is idempotent.
	DeleteDraft(userID string) error
}
