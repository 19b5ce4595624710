package domain

import (
	"encoding/json"
	"time"
)

// Moderation event types.
const (
	EventSessionCreated      = "session_created"
	EventSessionRejected     = "session_rejected"
	EventSessionExpired      = "session_expired"
	EventSessionInvalidated  = "session_invalidated"
	EventFingerprintMismatch = "fingerprint_mismatch"
	EventBehaviorFlagged     = "behavior_flagged"
	EventSecurityViolation   = "security_violation"
	EventIPBanned            = "ip_banned"
	EventGRPCRequest         = "grpc_request"
)

// Event is a moderation telemetry event. It carries the session id and IP hash only;
// raw addresses and tokens never appear in events.
type Event struct {
	ID        int64           `json:"id,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	SessionID string          `json:"sessionId,omitempty"`
	IPHash    string          `json:"ipHash,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
