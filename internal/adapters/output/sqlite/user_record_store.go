package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"
)

// Compile-time check to ensure UserRecordRepository implements UserRecordStore interface
var _ output.UserRecordStore = (*UserRecordRepository)(nil)

// UserRecordRepository keeps user records in an embedded SQLite database.
// Logged out users keep their row with NULL credentials.
type UserRecordRepository struct {
	db *sql.DB
}

// NewUserRecordRepository opens (or creates) the database at path and ensures the schema.
func NewUserRecordRepository(path string) (*UserRecordRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; avoids SQLITE_BUSY between the chat gateway and the callback server.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &UserRecordRepository{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_records (
			chat_user_id TEXT PRIMARY KEY,
			access_token TEXT,
			instance_host TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// GetUserRecord returns the record of a chat user, nil if absent or logged out.
func (r *UserRecordRepository) GetUserRecord(ctx context.Context, chatUserID string) (*domain.UserRecord, error) {
	var accessToken, instanceHost sql.NullString
	row := r.db.QueryRowContext(ctx, `SELECT access_token, instance_host FROM user_records WHERE chat_user_id = ?`, chatUserID)
	if err := row.Scan(&accessToken, &instanceHost); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !accessToken.Valid || !instanceHost.Valid {
		return nil, nil
	}
	return &domain.UserRecord{
		AccessToken:  accessToken.String,
		InstanceHost: instanceHost.String,
	}, nil
}

// PutUserRecord creates or overwrites the record of a chat user.
func (r *UserRecordRepository) PutUserRecord(ctx context.Context, chatUserID string, record domain.UserRecord) error {
	return r.upsert(ctx, chatUserID,
		sql.NullString{String: record.AccessToken, Valid: true},
		sql.NullString{String: record.InstanceHost, Valid: true})
}

// DeleteUserRecord tombstones the record of a chat user.
func (r *UserRecordRepository) DeleteUserRecord(ctx context.Context, chatUserID string) error {
	return r.upsert(ctx, chatUserID, sql.NullString{}, sql.NullString{})
}

// Ping checks the database handle.
func (r *UserRecordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database. Should be safe to call on shutdown.
func (r *UserRecordRepository) Close() error {
	return r.db.Close()
}

func (r *UserRecordRepository) upsert(ctx context.Context, chatUserID string, accessToken, instanceHost sql.NullString) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_records (chat_user_id, access_token, instance_host, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_user_id) DO UPDATE SET
			access_token = excluded.access_token,
			instance_host = excluded.instance_host,
			updated_at = excluded.updated_at`,
		chatUserID, accessToken, instanceHost, time.Now().UTC())
	return err
}
