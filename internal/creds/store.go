package creds

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store keeps the client's credentials and session hints in one sqlite file
// with two tiers:
//
//   - vault: named secret slots with an expiry. Expiry is enforced by the
//     read query, not by callers; an expired slot simply reads as absent.
//   - meta: durable k/v session hints (role hint, display name, device id)
//     that survive restarts and carry no TTL.
type Store struct {
	db *sql.DB
}

// Vault slot names.
const (
	SlotAccessToken  = "access_token"
	SlotRefreshToken = "refresh_token"
)

// Meta keys.
const (
	KeyRoleHint    = "role_hint"
	KeyDisplayName = "display_name"
	KeyDeviceID    = "device_id"
)

// RoleHintGuest marks a visitor who chose to browse without an account.
// The bootstrapper short-circuits on it without any network call.
const RoleHintGuest = "guest"

// Open opens (creating if needed) the credential database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database
	// is locked" flakiness when a second labmate process is open.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	// Expired slots are dead weight; sweep them while we're here.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM vault WHERE expires_at_unixms > 0 AND expires_at_unixms <= ?`,
		time.Now().UTC().UnixMilli())
	if err := s.ensureDeviceID(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vault (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ensureDeviceID(ctx context.Context) error {
	if v := s.Meta(ctx, KeyDeviceID); v != "" {
		return nil
	}
	return s.SetMeta(ctx, KeyDeviceID, uuid.NewString())
}

// Set writes a vault slot. ttl <= 0 stores the value without expiry.
func (s *Store) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().UTC().Add(ttl).UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO vault(name, value, expires_at_unixms) VALUES(?, ?, ?)`,
		name, value, expires)
	return err
}

// Get reads a vault slot. Absent, expired, or unreadable slots all report
// ("", false); callers never need an error path for a missing credential.
func (s *Store) Get(ctx context.Context, name string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM vault WHERE name = ? AND (expires_at_unixms = 0 OR expires_at_unixms > ?)`,
		name, time.Now().UTC().UnixMilli()).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *Store) Clear(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM vault WHERE name = ?`, name)
	return err
}

// SetMeta writes a durable session hint.
func (s *Store) SetMeta(ctx context.Context, k, v string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, k, strings.TrimSpace(v))
	return err
}

// Meta reads a durable hint; missing keys read as "".
func (s *Store) Meta(ctx context.Context, k string) string {
	var v string
	_ = s.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, k).Scan(&v)
	return strings.TrimSpace(v)
}

func (s *Store) ClearMeta(ctx context.Context, k string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM meta WHERE k = ?`, k)
	return err
}

// ClearSession wipes everything a logout must forget: both token slots and
// the session hints. The device id stays; it identifies the machine, not
// the account.
func (s *Store) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vault`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM meta WHERE k != ?`, KeyDeviceID)
	return err
}

// DeviceID is a stable per-machine identifier generated on first open.
func (s *Store) DeviceID(ctx context.Context) string {
	return s.Meta(ctx, KeyDeviceID)
}
