package sessionkit

import (
	"io"

	internalaudit "github.com/campuspulse/sessionkit/internal/audit"
)

// Audit event types emitted by the Manager.
const (
	AuditLoginSuccess   = "login.success"
	AuditLoginFailure   = "login.failure"
	AuditLogout         = "logout"
	AuditLogoutForced   = "logout.forced"
	AuditRefreshSuccess = "refresh.success"
	AuditRefreshFailure = "refresh.failure"
	AuditRefreshStale   = "refresh.stale"
	AuditSessionRestore = "session.restored"
	AuditRestoreCorrupt = "session.restore_corrupt"
	AuditSessionExpired = "session.expired"
	AuditSessionExtend  = "session.extended"
	AuditUserUpdated    = "user.updated"
)

// AuditEvent is a structured audit record emitted by the Manager.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the Manager's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
