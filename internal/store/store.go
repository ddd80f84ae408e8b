// Package store persists small per-visitor state in our own database: the
// dark-mode flag and a drafted signup payload. Reads fail soft: a missing or
// corrupted row is reported as absent and logged, never returned as an error.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/reelhouse/reelhouse/internal/database"
	"github.com/reelhouse/reelhouse/internal/validate"
)

const (
	keyDarkMode    = "dark_mode"
	keySignupDraft = "signup_draft"
)

type Store struct {
	db database.DBTX
}

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

// DarkMode reads the visitor's theme flag. Absent or unreadable state means
// the default light theme.
func (s *Store) DarkMode(ctx context.Context, visitorID string) bool {
	var enabled bool
	if !s.read(ctx, visitorID, keyDarkMode, &enabled) {
		return false
	}
	return enabled
}

func (s *Store) SetDarkMode(ctx context.Context, visitorID string, enabled bool) error {
	return s.write(ctx, visitorID, keyDarkMode, enabled)
}

// SignupDraft returns the visitor's saved signup form, nil when absent.
func (s *Store) SignupDraft(ctx context.Context, visitorID string) *validate.SignupInput {
	var draft validate.SignupInput
	if !s.read(ctx, visitorID, keySignupDraft, &draft) {
		return nil
	}
	return &draft
}

func (s *Store) SaveSignupDraft(ctx context.Context, visitorID string, draft validate.SignupInput) error {
	return s.write(ctx, visitorID, keySignupDraft, draft)
}

// ClearSignupDraft removes the draft after a completed signup. Failure is
// logged and swallowed; a leftover draft is harmless.
func (s *Store) ClearSignupDraft(ctx context.Context, visitorID string) {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM visitor_state WHERE visitor_id = $1 AND key = $2",
		visitorID, keySignupDraft,
	); err != nil {
		slog.Warn("store: clear signup draft failed", "visitor_id", visitorID, "error", err)
	}
}

// read unmarshals the stored value into out and reports whether a usable
// value was found.
func (s *Store) read(ctx context.Context, visitorID, key string, out any) bool {
	var raw []byte
	err := s.db.QueryRow(ctx,
		"SELECT value FROM visitor_state WHERE visitor_id = $1 AND key = $2",
		visitorID, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if err != nil {
		slog.Warn("store: read failed", "visitor_id", visitorID, "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("store: corrupted value", "visitor_id", visitorID, "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) write(ctx context.Context, visitorID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := s.db.Exec(ctx,
		`INSERT INTO visitor_state (visitor_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (visitor_id, key) DO UPDATE SET value = $3, updated_at = now()`,
		visitorID, key, raw,
	); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
