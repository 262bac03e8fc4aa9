// Package session provides the admin session store. Sessions are the only
// mutable rows in the data model: last_activity and is_active change after
// insert, everything else is written once.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/postforge/postforge-go/internal/model"
	"github.com/postforge/postforge-go/internal/store"
)

// openRetries is how many identifier collisions Open tolerates before
// giving up. Collisions are astronomically rare with UUID identifiers;
// the retry loop exists to honor the store's uniqueness contract.
const openRetries = 3

// Store manages admin sessions backed by the admin_sessions table.
type Store struct {
	db          *sql.DB
	idleTimeout time.Duration
}

// New creates a session store. idleTimeout bounds how long a session may
// sit without activity and still be considered valid.
func New(db *sql.DB, idleTimeout time.Duration) *Store {
	return &Store{db: db, idleTimeout: idleTimeout}
}

// Open creates a new active session for the client and returns its
// identifier. A client may own many concurrent sessions. On the (rare)
// duplicate identifier collision, a fresh identifier is generated and the
// insert retried; after openRetries collisions ErrDuplicateKey surfaces.
func (s *Store) Open(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", model.NewValidationError("client_id", "must not be empty")
	}

	var lastErr error
	for i := 0; i < openRetries; i++ {
		sessionID := model.GenerateSessionID()
		now := time.Now().UTC()

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO admin_sessions (session_id, client_id, login_time, last_activity, is_active)
			VALUES (?, ?, ?, ?, 1)`,
			sessionID, clientID, now, now,
		)
		if err == nil {
			return sessionID, nil
		}
		if !store.IsUniqueViolation(err) {
			return "", fmt.Errorf("opening session: %w", err)
		}
		lastErr = model.ErrDuplicateKey
	}
	return "", fmt.Errorf("opening session after %d attempts: %w", openRetries, lastErr)
}

// Touch updates the session's last activity time. It fails with
// ErrNotFound if the session does not exist or is inactive. last_activity
// never decreases: a touch carrying an older clock reading keeps the
// stored value.
func (s *Store) Touch(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE admin_sessions
		SET last_activity = MAX(last_activity, ?)
		WHERE session_id = ? AND is_active = 1`,
		time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Close deactivates the session. Closing an already-closed session is a
// no-op; closing an unknown session returns ErrNotFound.
func (s *Store) Close(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE admin_sessions SET is_active = 0 WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// IsValid reports whether the session exists, is active, and has seen
// activity within the idle timeout. Unknown sessions are simply invalid,
// not an error.
func (s *Store) IsValid(ctx context.Context, sessionID string) (bool, error) {
	var isActive bool
	var lastActivity time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT is_active, last_activity FROM admin_sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&isActive, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up session: %w", err)
	}

	if !isActive {
		return false, nil
	}
	return time.Since(lastActivity) <= s.idleTimeout, nil
}

// Get returns the session row, or ErrNotFound.
func (s *Store) Get(ctx context.Context, sessionID string) (model.AdminSession, error) {
	var sess model.AdminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, client_id, login_time, last_activity, is_active
		FROM admin_sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&sess.ID, &sess.SessionID, &sess.ClientID, &sess.LoginTime, &sess.LastActivity, &sess.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AdminSession{}, model.ErrNotFound
	}
	if err != nil {
		return model.AdminSession{}, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}
