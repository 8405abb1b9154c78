package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the stored lifecycle state of a session.
// "expired" is derived from ExpiresAt and never written; a session row either
// exists as active or has been purged.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
)

// Session represents one end-to-end search interaction with a bounded
// retention window. It is created before any model call runs and purged by the
// cleanup worker once the retention window elapses.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	UserName  string        `json:"user_name"`
	ImagePath string        `json:"-"`
	Consent   bool          `json:"privacy_policy_agreed"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// NewSession builds an active session whose expiry is exactly the creation
// time plus the retention window.
func NewSession(id uuid.UUID, userName string, consent bool, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserName:  userName,
		Consent:   consent,
		Status:    SessionActive,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the retention window has elapsed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// CleanupJob is a durable record scheduling a session purge at its expiry
// time. Jobs survive restarts; the sweep worker also purges any expired
// session whose job row was lost.
type CleanupJob struct {
	SessionID uuid.UUID `json:"session_id"`
	RunAt     time.Time `json:"run_at"`
	CreatedAt time.Time `json:"created_at"`
}
