package memory

import (
	"sync"
	"time"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"
)

// Compile-time check to ensure MemoryDraftStore implements DraftStore interface
var _ output.DraftStore = (*MemoryDraftStore)(nil)

// MemoryDraftStore struct - Output adapter for in-memory repost drafts.
// Drafts never leave the store: readers get copies and writers go through
// ModifyDraft under the store lock.
type MemoryDraftStore struct {
	mu             sync.Mutex
	drafts         map[string]*domain.RepostDraft
	timeout        time.Duration
	maxAttachments int
}

// NewMemoryDraftStore creates a new in-memory draft store.
// timeout: Duration after which drafts expire
// maxAttachments: Maximum number of attachments kept per draft
func NewMemoryDraftStore(timeout time.Duration, maxAttachments int) *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts:         make(map[string]*domain.RepostDraft),
		timeout:        timeout,
		maxAttachments: maxAttachments,
	}
}

// GetDraft retrieves a copy of a draft by LINE user ID.
// Returns nil if the draft does not exist or has expired. Expired drafts are deleted (lazy cleanup).
// LastAccessTime is updated for valid drafts.
func (m *MemoryDraftStore) GetDraft(userID string) (*domain.RepostDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := m.liveDraft(userID)
	if draft == nil {
		return nil, nil
	}

	draft.LastAccessTime = time.Now()

	return draft.Clone(), nil
}

// ModifyDraft applies change to the live draft of userID, or to a new one.
func (m *MemoryDraftStore) ModifyDraft(userID string, change func(draft *domain.RepostDraft)) (*domain.RepostDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := m.liveDraft(userID)
	if draft == nil {
		draft = domain.NewRepostDraft(userID, m.timeout, m.maxAttachments)
		m.drafts[userID] = draft
	}

	change(draft)
	draft.LastAccessTime = time.Now()

	return draft.Clone(), nil
}

// DeleteDraft removes a draft by LINE user ID.
// This operation is idempotent - deleting a non-existent draft does not return an error.
func (m *MemoryDraftStore) DeleteDraft(userID string) error {
	m.mu.Lock()
	delete(m.drafts, userID)
	m.mu.Unlock()
	return nil
}

// liveDraft returns the stored draft unless it expired. Callers hold mu.
func (m *MemoryDraftStore) liveDraft(userID string) *domain.RepostDraft {
	draft, exists := m.drafts[userID]
	if !exists {
		return nil
	}

	if draft.IsExpired() {
		delete(m.drafts, userID)
		return nil
	}

	return draft
}
