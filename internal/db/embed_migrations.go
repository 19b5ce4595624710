package db

import "embed"

// MigrationFS embeds the SQL migrations for anon_sessions, audit_logs and moderation_events.
// Applied by internal/db/migrate (cmd/migrate).
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
