package memory

import (
	"context"
	"sync"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"
)

// Compile-time check to ensure MemoryUserRecordStore implements UserRecordStore interface
var _ output.UserRecordStore = (*MemoryUserRecordStore)(nil)

// MemoryUserRecordStore struct - Output adapter keeping user records in memory.
// Records do not survive a restart; use it for local development and tests.
// Logged out users are kept as a nil record, like the persistent adapters' tombstones.
type MemoryUserRecordStore struct {
	records sync.Map
}

// NewMemoryUserRecordStore creates an empty in-memory user record store
func NewMemoryUserRecordStore() *MemoryUserRecordStore {
	return &MemoryUserRecordStore{}
}

// GetUserRecord returns a copy of the record, or nil if absent or logged out
func (m *MemoryUserRecordStore) GetUserRecord(ctx context.Context, chatUserID string) (*domain.UserRecord, error) {
	value, exists := m.records.Load(chatUserID)
	if !exists {
		return nil, nil
	}

	record, ok := value.(*domain.UserRecord)
	if !ok || record == nil {
		return nil, nil
	}

	recordCopy := *record
	return &recordCopy, nil
}

// PutUserRecord overwrites the record of a chat user
func (m *MemoryUserRecordStore) PutUserRecord(ctx context.Context, chatUserID string, record domain.UserRecord) error {
	m.records.Store(chatUserID, &record)
	return nil
}

// DeleteUserRecord tombstones the record of a chat user
func (m *MemoryUserRecordStore) DeleteUserRecord(ctx context.Context, chatUserID string) error {
	m.records.Store(chatUserID, (*domain.UserRecord)(nil))
	return nil
}

// Ping always succeeds
func (m *MemoryUserRecordStore) Ping(ctx context.Context) error {
	return nil
}
