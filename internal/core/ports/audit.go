package ports

import (
	"context"
	"time"
)

// AuthEventType names an auditable authentication event.
type AuthEventType string

const (
	AuthEventLoginSucceeded AuthEventType = "login_succeeded"
	AuthEventLoginFailed    AuthEventType = "login_failed"
	AuthEventUserRegistered AuthEventType = "user_registered"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType
	Email      string
	UserID     int64
	Reason     string // failure reason, empty on success
	ActorID    int64  // administrator who performed a registration
	OccurredAt time.Time
}

// AuditSink accepts audit events. Record must not block the caller.
type AuditSink interface {
	Record(event AuthEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event AuthEvent) error
}
