package domain

import "time"

// AuditLog is one recorded call against the session service. The client address is stored
// only as its keyed hash.
type AuditLog struct {
	ID        string
	SessionID string
	Action    string
	Resource  string
	IPHash    string
	Metadata  string
	CreatedAt time.Time
}
