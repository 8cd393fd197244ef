package authcore

import (
	"context"
	"io"

	internalaudit "github.com/cafeplatform/authcore/internal/audit"
)

// SubjectRecord is the account view authcore needs from the platform's user
// store: credentials for login and role names for permission resolution.
// Roles are referenced by name only; authcore never owns user rows.
type SubjectRecord struct {
	SubjectID    string
	Identifier   string
	PasswordHash string
	Roles        []string
}

// SubjectStore is the collaborator interface the embedding service must
// implement against its own user persistence.
type SubjectStore interface {
	// GetByIdentifier resolves a login identifier (email, phone) to an
	// account record. Return ErrSubjectNotFound for unknown identifiers;
	// Login maps it to ErrInvalidCredentials without leaking existence.
	GetByIdentifier(ctx context.Context, identifier string) (SubjectRecord, error)
	// RolesFor returns the role names assigned to the subject.
	RolesFor(ctx context.Context, subjectID string) ([]string, error)
}

// CaptchaVerifier is the pass/fail contract of the external captcha
// provider. A transport or provider error must be treated as a failure by
// callers; the gate fails closed.
type CaptchaVerifier interface {
	Verify(ctx context.Context, challenge string) (bool, error)
}

// CodeSender dispatches a one-time code to a target (phone number, email
// address) over an external transport.
type CodeSender interface {
	Send(ctx context.Context, target, code string) error
}

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access-token lifetime in seconds, for token
	// responses at the transport boundary.
	ExpiresIn int
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events, one
// object per line, to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
