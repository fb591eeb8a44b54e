// Package audit records every change ssaidctl makes to a device.
//
// Committed token changes, backups, user switches and reboots are appended
// to a local log so an operator can see which identifier an application had
// before it was replaced.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) next to
// the configuration file:
//
//	$XDG_CONFIG_HOME/ssaidctl/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC) and a random id
//   - Operator (user@host) and operation name
//   - Device user, package, previous and new token, store path
//
// # Usage
//
//	entry := audit.NewEntry(audit.OpRandomize)
//	entry.UserID, entry.Package = "0", "com.example.app"
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails the operation continues
// without error.
//
// # Reading Logs
//
// ReadEntries parses the log; Filter narrows it by user, package or
// operation. Malformed lines are skipped to tolerate partial writes.
package audit
