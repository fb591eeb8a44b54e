package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	// Nested so Log has to create the directory itself.
	tempDir := filepath.Join(t.TempDir(), "ssaidctl")
	original := configs.UserSsaidSettings.UserConfigsPath
	configs.UserSsaidSettings.UserConfigsPath = tempDir
	t.Cleanup(func() {
		configs.UserSsaidSettings.UserConfigsPath = original
	})
	return tempDir
}

func TestLog_CreatesFile(t *testing.T) {
	dir := withTempConfigDir(t)

	Log(NewEntry(OpBackup))

	logPath := filepath.Join(dir, "audit.jsonl")
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected audit log permissions 0600, got %o", perm)
	}
	if LogPath() != logPath {
		t.Errorf("LogPath() = %q, want %q", LogPath(), logPath)
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	withTempConfigDir(t)

	Log(Entry{Operation: OpSet, UserID: "0", Package: "com.a"})
	Log(Entry{Operation: OpRandomize, UserID: "0", Package: "com.b"})
	Log(Entry{Operation: OpReboot})

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	wantOps := []string{OpSet, OpRandomize, OpReboot}
	for i, op := range wantOps {
		if entries[i].Operation != op {
			t.Errorf("Entry %d: expected op %q, got %q", i, op, entries[i].Operation)
		}
		if entries[i].ID == "" {
			t.Errorf("Entry %d: expected an id to be assigned", i)
		}
	}
	if entries[0].ID == entries[1].ID {
		t.Error("Expected distinct ids")
	}
}

func TestLog_ValidJSON(t *testing.T) {
	dir := withTempConfigDir(t)

	entry := NewEntry(OpRandomize)
	entry.UserID = "10"
	entry.Package = "com.example.app"
	entry.OldValue = "abcdef0123456789"
	entry.NewValue = "0123456789abcdef"
	entry.Path = "/data/system/users/10/settings_ssaid.xml"
	Log(entry)

	data, err := os.ReadFile(filepath.Join(dir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Audit line is not valid JSON: %v", err)
	}

	for key, want := range map[string]string{
		"op":        OpRandomize,
		"user_id":   "10",
		"package":   "com.example.app",
		"old_value": "abcdef0123456789",
		"new_value": "0123456789abcdef",
		"path":      "/data/system/users/10/settings_ssaid.xml",
		"id":        entry.ID,
	} {
		if parsed[key] != want {
			t.Errorf("Field %q = %v, want %q", key, parsed[key], want)
		}
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	withTempConfigDir(t)

	Log(Entry{Operation: OpSwitch, UserID: "10"})

	entries, err := ReadEntries()
	if err != nil || len(entries) != 1 {
		t.Fatalf("Expected one entry, got %d (%v)", len(entries), err)
	}

	ts, err := time.Parse(time.RFC3339Nano, entries[0].Timestamp)
	if err != nil {
		t.Fatalf("Timestamp %q is not RFC3339: %v", entries[0].Timestamp, err)
	}
	if time.Since(ts) > time.Minute {
		t.Errorf("Timestamp %v is not recent", ts)
	}
	if !strings.HasSuffix(entries[0].Timestamp, "Z") {
		t.Errorf("Timestamp should be UTC, got %q", entries[0].Timestamp)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	dir := withTempConfigDir(t)

	Log(Entry{Operation: OpReboot})

	data, err := os.ReadFile(filepath.Join(dir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	line := string(data)
	for _, field := range []string{`"package"`, `"old_value"`, `"new_value"`, `"user_id"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted", field)
		}
	}
}

func TestLog_UnwritableDirectoryIsIgnored(t *testing.T) {
	dir := withTempConfigDir(t)
	// A regular file where the directory should be.
	if err := os.MkdirAll(filepath.Dir(dir), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("not a dir"), 0600); err != nil {
		t.Fatal(err)
	}

	Log(Entry{Operation: OpSet}) // must not panic
}

func TestReadEntries_NoLog(t *testing.T) {
	withTempConfigDir(t)

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.000000Z","id":"a","op":"set","package":"com.a"}
{"ts":"2024-01-15T10:31:00.000000Z","id":"b","op":"restore","package":"com.b"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Operation != OpRestore || entries[1].Package != "com.b" {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"op":"set","id":"a"}
not json
{"op":"backup","id":"b"`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry (malformed and truncated lines skipped), got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries(nil)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestFilterApply(t *testing.T) {
	entries := []Entry{
		{ID: "1", Operation: OpSet, UserID: "0", Package: "com.a"},
		{ID: "2", Operation: OpRandomize, UserID: "10", Package: "com.a"},
		{ID: "3", Operation: OpBackup, UserID: "0"},
		{ID: "4", Operation: OpRestore, UserID: "0", Package: "com.b"},
		{ID: "5", Operation: OpRandomize, UserID: "0", Package: "com.a"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"NoFilter", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"ByUser", Filter{UserID: "10"}, []string{"2"}},
		{"ByPackage", Filter{Package: "com.a"}, []string{"1", "2", "5"}},
		{"ByOperation", Filter{Operation: OpRandomize}, []string{"2", "5"}},
		{"Combined", Filter{UserID: "0", Package: "com.a"}, []string{"1", "5"}},
		{"LimitKeepsNewest", Filter{Limit: 2}, []string{"4", "5"}},
		{"LimitLargerThanResult", Filter{Package: "com.b", Limit: 10}, []string{"4"}},
		{"NoMatch", Filter{Package: "com.missing"}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Apply(entries)
			var ids []string
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tc.want, ",") {
				t.Errorf("Apply() ids = %v, want %v", ids, tc.want)
			}
		})
	}
}
