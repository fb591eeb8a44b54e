package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	"github.com/PolarWolf314/ssaidctl/internal/utils"
)

// Operation names recorded in the log.
const (
	OpSet       = "set"
	OpRandomize = "randomize"
	OpRestore   = "restore"
	OpBackup    = "backup"
	OpSwitch    = "switch"
	OpReboot    = "reboot"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	ID        string `json:"id"`
	Operator  string `json:"operator,omitempty"` // user@host running ssaidctl.
	Operation string `json:"op"`

	// Optional fields depending on operation.
	UserID   string `json:"user_id,omitempty"`
	Package  string `json:"package,omitempty"`   // For set/randomize/restore.
	OldValue string `json:"old_value,omitempty"` // For set/randomize/restore.
	NewValue string `json:"new_value,omitempty"` // For set/randomize/restore.
	Path     string `json:"path,omitempty"`      // Store path, or backup path for backup.
}

// NewEntry returns an entry for op with the id and operator filled in.
func NewEntry(op string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Operator:  utils.Operator(),
		Operation: op,
	}
}

// Log appends an entry to the audit log.
// Failures are ignored: operations never fail because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	logPath := LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	// The log holds device identifiers, so keep it owner-only.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file.
func LogPath() string {
	return configs.AuditLogPath()
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	data, err := os.ReadFile(LogPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Filter selects entries. Zero-valued fields match everything.
type Filter struct {
	UserID    string
	Package   string
	Operation string
	Limit     int // Keep only the newest Limit entries when > 0.
}

// Apply returns the entries matching f, oldest first.
func (f Filter) Apply(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.Package != "" && e.Package != f.Package {
			continue
		}
		if f.Operation != "" && e.Operation != f.Operation {
			continue
		}
		out = append(out, e)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}
