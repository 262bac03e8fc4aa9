package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/postforge/postforge-go/internal/model"
	"github.com/postforge/postforge-go/internal/testutil"
)

func TestStore_OpenAndGet(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	sessionID, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("Open returned empty session id")
	}

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if sess.ClientID != "admin" {
		t.Errorf("ClientID = %q, want admin", sess.ClientID)
	}
	if !sess.IsActive {
		t.Error("new session is not active")
	}
	if !sess.LoginTime.Equal(sess.LastActivity) {
		t.Errorf("LoginTime %v != LastActivity %v on open", sess.LoginTime, sess.LastActivity)
	}
}

func TestStore_Open_EmptyClient(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)

	_, err := s.Open(context.Background(), "")
	if !model.IsValidation(err) {
		t.Fatalf("Open with empty client returned %v, want ValidationError", err)
	}
}

func TestStore_Open_ConcurrentSessions(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	// A client may hold several live sessions at once.
	first, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	second, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("second Open error: %v", err)
	}
	if first == second {
		t.Fatal("two opens returned the same session id")
	}

	for _, id := range []string{first, second} {
		valid, err := s.IsValid(ctx, id)
		if err != nil {
			t.Fatalf("IsValid error: %v", err)
		}
		if !valid {
			t.Errorf("session %s invalid right after open", id)
		}
	}
}

func TestStore_Touch(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	sessionID, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	// Age the row, then touch; last_activity must move forward.
	old := time.Now().UTC().Add(-30 * time.Minute)
	if _, err := db.Exec("UPDATE admin_sessions SET last_activity = ? WHERE session_id = ?", old, sessionID); err != nil {
		t.Fatalf("aging session: %v", err)
	}

	if err := s.Touch(ctx, sessionID); err != nil {
		t.Fatalf("Touch error: %v", err)
	}

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !sess.LastActivity.After(old) {
		t.Errorf("last_activity %v did not advance past %v", sess.LastActivity, old)
	}
}

func TestStore_Touch_NeverDecreases(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	sessionID, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	// Pin last_activity in the future; a touch with current time must keep it.
	future := time.Now().UTC().Add(time.Hour)
	if _, err := db.Exec("UPDATE admin_sessions SET last_activity = ? WHERE session_id = ?", future, sessionID); err != nil {
		t.Fatalf("setting last_activity: %v", err)
	}

	if err := s.Touch(ctx, sessionID); err != nil {
		t.Fatalf("Touch error: %v", err)
	}

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if sess.LastActivity.Before(future.Add(-time.Second)) {
		t.Errorf("last_activity %v decreased below %v", sess.LastActivity, future)
	}
}

func TestStore_Touch_Missing(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	if err := s.Touch(ctx, "no-such-session"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Touch of unknown session returned %v, want ErrNotFound", err)
	}

	// Touching a closed session also fails.
	sessionID, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.Close(ctx, sessionID); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := s.Touch(ctx, sessionID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Touch of closed session returned %v, want ErrNotFound", err)
	}
}

func TestStore_Close(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	sessionID, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	if err := s.Close(ctx, sessionID); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	valid, err := s.IsValid(ctx, sessionID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if valid {
		t.Error("closed session reported valid")
	}

	// Closing again is a no-op.
	if err := s.Close(ctx, sessionID); err != nil {
		t.Errorf("second Close returned %v, want nil", err)
	}

	// Closing an unknown session is an error.
	if err := s.Close(ctx, "no-such-session"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Close of unknown session returned %v, want ErrNotFound", err)
	}
}

func TestStore_IsValid_IdleTimeout(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)
	ctx := context.Background()

	sessionID, err := s.Open(ctx, "admin")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	// Still active but last touched beyond the idle timeout.
	stale := time.Now().UTC().Add(-2 * time.Hour)
	if _, err := db.Exec("UPDATE admin_sessions SET last_activity = ? WHERE session_id = ?", stale, sessionID); err != nil {
		t.Fatalf("aging session: %v", err)
	}

	valid, err := s.IsValid(ctx, sessionID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if valid {
		t.Error("idle-expired session reported valid")
	}
}

func TestStore_IsValid_Unknown(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)

	valid, err := s.IsValid(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if valid {
		t.Error("unknown session reported valid")
	}
}

func TestStore_Get_Missing(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, time.Hour)

	_, err := s.Get(context.Background(), "no-such-session")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get of unknown session returned %v, want ErrNotFound", err)
	}
}
