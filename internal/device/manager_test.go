package device

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
	"github.com/PolarWolf314/ssaidctl/internal/executor/executortest"
	"github.com/PolarWolf314/ssaidctl/internal/registry"
	"github.com/PolarWolf314/ssaidctl/internal/store"
)

const newToken = "0123456789abcdef"

func userStore(pkg, value string) string {
	return fmt.Sprintf(`<?xml version='1.0' encoding='utf-8' standalone='yes' ?>
<settings version="-1">
  <setting id="0" name="userkey" value="0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF" package="android" defaultValue="0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF" defaultSysSet="true" tag="null" />
  <setting id="1" name="10120" value="%s" package="%s" defaultValue="1111111111111111" defaultSysSet="false" tag="200" />
  <setting id="2" name="10121" value="fedcba9876543210" package="org.example.notes" defaultValue="fedcba9876543210" defaultSysSet="true" tag="null" />
</settings>
`, value, pkg)
}

func localShell() executor.Executor {
	return executor.NewShell([]string{"sh", "-c"})
}

// testConfig lays stores out under root and uses gzip in place of abx2xml/xml2abx.
func testConfig(root string) *configs.Config {
	cfg := configs.DefaultConfig()
	cfg.Device.StorePath = filepath.Join(root, "users", "{user}", "settings_ssaid.xml")
	cfg.Device.BackupDir = filepath.Join(root, "backup")
	cfg.Device.Shell = []string{"sh", "-c"}
	cfg.Converter.ToText = "gzip -dc {in}"
	cfg.Converter.ToBinary = "gzip -c {in} > {out}"
	cfg.Commands.Reboot = "true"
	return cfg
}

func writeUserStore(t *testing.T, root, user string, content []byte) string {
	t.Helper()
	dir := filepath.Join(root, "users", user)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	path := filepath.Join(dir, "settings_ssaid.xml")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func gunzipFile(t *testing.T, path string) []byte {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func tuples(recs []registry.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = strings.Join([]string{r.Package, r.Value, r.DefaultValue, r.Tag}, "|")
	}
	return out
}

func switched(t *testing.T, m *Manager, user string) *registry.Registry {
	t.Helper()
	reg, err := m.SwitchTo(context.Background(), user)
	require.NoError(t, err)
	return reg
}

func TestSwitchDiscardsPreviousUser(t *testing.T) {
	root := t.TempDir()
	writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	writeUserStore(t, root, "10", []byte(userStore("com.work.mail", "9999999999999999")))
	m := NewManager(localShell(), testConfig(root))

	first := switched(t, m, "0")
	firstRecords := first.Records()
	assert.Equal(t, "0", m.ActiveUser())

	second := switched(t, m, "10")
	assert.Equal(t, "10", m.ActiveUser())
	_, leaked := second.Lookup("com.example.app")
	assert.False(t, leaked, "records of user 0 visible after switching to 10")
	_, ok := second.Lookup("com.work.mail")
	assert.True(t, ok)
	assert.NotSame(t, first, second)

	again := switched(t, m, "0")
	assert.Equal(t, firstRecords, again.Records())
	assert.NotSame(t, first, again, "registries must not be memoized across switches")
	assert.Same(t, again, m.Active().Registry)
}

func TestSwitchToMissingUser(t *testing.T) {
	root := t.TempDir()
	writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	m := NewManager(localShell(), testConfig(root))
	switched(t, m, "0")

	_, err := m.SwitchTo(context.Background(), "11")
	assert.ErrorIs(t, err, kerrors.ErrUserNotFound)
	assert.Nil(t, m.Active(), "previous context must be discarded even when the switch fails")
	assert.Equal(t, "0", m.ActiveUser())
}

func TestSwitchToInvalidUserID(t *testing.T) {
	fake := &executortest.Fake{}
	m := NewManager(fake, configs.DefaultConfig())

	for _, id := range []string{"", "-1", "0; reboot", "../0"} {
		_, err := m.SwitchTo(context.Background(), id)
		assert.ErrorIs(t, err, kerrors.ErrUserNotFound, id)
	}
	assert.Empty(t, fake.Calls(), "invalid ids must not reach the device")
}

func TestSwitchToMalformedStore(t *testing.T) {
	root := t.TempDir()
	writeUserStore(t, root, "0", []byte("<settings><setting package=\"a\" value=\"1\"></settings>"))
	m := NewManager(localShell(), testConfig(root))

	_, err := m.SwitchTo(context.Background(), "0")
	assert.ErrorIs(t, err, kerrors.ErrParse)
	assert.Nil(t, m.Active())
	assert.Equal(t, "", m.ActiveUser())
}

func TestSwitchToPackedStore(t *testing.T) {
	root := t.TempDir()
	text := userStore("com.example.app", "abcdef0123456789")
	writeUserStore(t, root, "0", gzipBytes(t, []byte(text)))
	m := NewManager(localShell(), testConfig(root))

	reg := switched(t, m, "0")
	assert.Equal(t, store.PackedBinary, reg.Encoding)
	assert.Equal(t, []byte(text), reg.RawText())
	assert.Len(t, reg.Selectable(), 2)
}

func TestSwitchFallsBackToProbe(t *testing.T) {
	root := t.TempDir()
	writeUserStore(t, root, "0", []byte("not a settings document"))
	cfg := testConfig(root)

	t.Run("ProbeSaysText", func(t *testing.T) {
		fake := (&executortest.Fake{Fallback: localShell()}).
			OnPrefix("file -b ", executortest.Response{Stdout: "ASCII text\n"})
		m := NewManager(fake, cfg)
		_, err := m.SwitchTo(context.Background(), "0")
		assert.ErrorIs(t, err, kerrors.ErrDetection)
		assert.NotErrorIs(t, err, kerrors.ErrParse)
		assert.True(t, fake.CalledWithPrefix("file -b"))
		assert.Nil(t, m.Active())
	})

	t.Run("ProbeSaysData", func(t *testing.T) {
		fake := (&executortest.Fake{Fallback: localShell()}).
			OnPrefix("file -b ", executortest.Response{Stdout: "data\n"})
		_, err := NewManager(fake, cfg).SwitchTo(context.Background(), "0")
		assert.ErrorIs(t, err, kerrors.ErrDetection)
		assert.False(t, fake.CalledWithPrefix("gzip"))
	})

	t.Run("ProbeSaysXML", func(t *testing.T) {
		fake := (&executortest.Fake{Fallback: localShell()}).
			OnPrefix("file -b ", executortest.Response{Stdout: "XML 1.0 document, ASCII text\n"})
		_, err := NewManager(fake, cfg).SwitchTo(context.Background(), "0")
		assert.ErrorIs(t, err, kerrors.ErrParse)
	})

	t.Run("ProbeUnavailable", func(t *testing.T) {
		fake := (&executortest.Fake{Fallback: localShell()}).
			OnPrefix("file -b ", executortest.Response{ExitCode: 127})
		_, err := NewManager(fake, cfg).SwitchTo(context.Background(), "0")
		assert.ErrorIs(t, err, kerrors.ErrDetection)
	})
}

func TestMutateCommitsTextStore(t *testing.T) {
	root := t.TempDir()
	path := writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	m := NewManager(localShell(), testConfig(root))
	before := switched(t, m, "0").Records()

	out, err := m.Mutate(context.Background(), "com.example.app", newToken)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, out.State)
	assert.True(t, out.State.Terminal())
	assert.True(t, out.Changed())
	assert.Equal(t, "abcdef0123456789", out.Previous.Value)
	assert.Equal(t, newToken, out.Record.Value)
	assert.Equal(t, "0", out.UserID)
	assert.Equal(t, path, out.Path)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, userStore("com.example.app", newToken), string(onDisk))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reparsed, _, err := registry.Parse(onDisk, path, store.TextXML)
	require.NoError(t, err)
	after := reparsed.Records()
	for i := range before {
		if before[i].Package == "com.example.app" {
			assert.Equal(t, newToken, after[i].Value)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	rec, _ := m.Active().Registry.Lookup("com.example.app")
	assert.Equal(t, newToken, rec.Value)

	// The refreshed snapshot allows a second edit in the same session.
	out, err = m.Mutate(context.Background(), "com.example.app", "1111111111111111")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, out.State)
}

func TestMutatePackedRoundTrip(t *testing.T) {
	root := t.TempDir()
	text := userStore("com.example.app", "abcdef0123456789")
	path := writeUserStore(t, root, "0", gzipBytes(t, []byte(text)))
	m := NewManager(localShell(), testConfig(root))
	before := switched(t, m, "0").Records()

	out, err := m.Mutate(context.Background(), "com.example.app", "AAAABBBBCCCCDDDD")
	require.NoError(t, err)
	assert.Equal(t, "aaaabbbbccccdddd", out.Record.Value)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	enc, err := store.Detect(raw)
	require.NoError(t, err)
	assert.Equal(t, store.PackedBinary, enc, "store must stay in its native encoding")

	reparsed, _, err := registry.Parse(gunzipFile(t, path), path, store.TextXML)
	require.NoError(t, err)

	want := tuples(before)
	want[1] = "com.example.app|aaaabbbbccccdddd|1111111111111111|200"
	assert.Equal(t, want, tuples(reparsed.Records()))

	_, err = m.Mutate(context.Background(), "org.example.notes", newToken)
	require.NoError(t, err, "packed snapshot must be refreshed after commit")
}

func TestMutateRejectsWithoutTouchingStore(t *testing.T) {
	root := t.TempDir()
	path := writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	m := NewManager(localShell(), testConfig(root))
	switched(t, m, "0")

	tests := []struct {
		name  string
		pkg   string
		token string
		state State
		err   error
	}{
		{"TooShort", "com.example.app", "XYZ", StateRejected, kerrors.ErrValidation},
		{"NonHex", "com.example.app", "ghijklmnopqrstuv", StateRejected, kerrors.ErrValidation},
		{"ValidationBeforeLookup", "com.missing.app", "XYZ", StateRejected, kerrors.ErrValidation},
		{"UnknownPackage", "com.missing.app", newToken, StateNotFound, kerrors.ErrNotFound},
		{"PlatformRecord", registry.PlatformPackage, newToken, StateNotFound, kerrors.ErrNotFound},
		{"PlatformRecordBadToken", registry.PlatformPackage, "nope", StateRejected, kerrors.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := m.Mutate(context.Background(), tc.pkg, tc.token)
			assert.ErrorIs(t, err, tc.err)
			require.NotNil(t, out)
			assert.Equal(t, tc.state, out.State)
			assert.True(t, out.State.Terminal())
		})
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "store mtime changed")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, userStore("com.example.app", "abcdef0123456789"), string(content))
}

func TestMutateDetectsOutOfBandChange(t *testing.T) {
	root := t.TempDir()
	path := writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	m := NewManager(localShell(), testConfig(root))
	switched(t, m, "0")

	changed := userStore("com.example.app", "5555555555555555")
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o600))

	out, err := m.Mutate(context.Background(), "com.example.app", newToken)
	assert.ErrorIs(t, err, kerrors.ErrConsistency)
	assert.Equal(t, StateInconsistent, out.State)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, changed, string(content), "external change must not be overwritten")
}

func TestMutateCommitFailureKeepsRegistry(t *testing.T) {
	root := t.TempDir()
	original := userStore("com.example.app", "abcdef0123456789")
	path := writeUserStore(t, root, "0", []byte(original))

	fake := (&executortest.Fake{Fallback: localShell()}).
		OnPrefix("mv -f", executortest.Response{ExitCode: 1, Stderr: "read-only file system"})
	m := NewManager(fake, testConfig(root))
	switched(t, m, "0")

	out, err := m.Mutate(context.Background(), "com.example.app", newToken)
	assert.ErrorIs(t, err, kerrors.ErrCommitFailed)
	assert.Equal(t, StateCommitFailed, out.State)

	rec, _ := m.Active().Registry.Lookup("com.example.app")
	assert.Equal(t, "abcdef0123456789", rec.Value, "registry must only change after a commit")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestMutateWithoutActiveUser(t *testing.T) {
	m := NewManager(&executortest.Fake{}, configs.DefaultConfig())

	out, err := m.Mutate(context.Background(), "com.example.app", newToken)
	assert.ErrorIs(t, err, kerrors.ErrNoActiveUser)
	assert.Nil(t, out)

	_, err = m.Backup(context.Background())
	assert.ErrorIs(t, err, kerrors.ErrNoActiveUser)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	root := t.TempDir()
	path := writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	m := NewManager(localShell(), testConfig(root))
	switched(t, m, "0")

	out, err := m.Preview("com.example.app", newToken)
	require.NoError(t, err)
	assert.Equal(t, StatePatched, out.State)
	assert.Equal(t, newToken, out.Record.Value)
	assert.Greater(t, out.End, out.Start)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, userStore("com.example.app", "abcdef0123456789"), string(content))
}

func TestMutationTrail(t *testing.T) {
	toPatched := []State{StateIdle, StateValidating, StateValidated, StateLocating, StateLocated, StatePatching}

	tests := []struct {
		name    string
		pkg     string
		token   string
		preview bool
		tamper  bool
		want    []State
	}{
		{"Committed", "com.example.app", newToken, false, false,
			append(append([]State{}, toPatched...), StatePatched, StateCommitting, StateCommitted)},
		{"Preview", "com.example.app", newToken, true, false,
			append(append([]State{}, toPatched...), StatePatched)},
		{"Rejected", "com.example.app", "XYZ", false, false,
			[]State{StateIdle, StateValidating, StateRejected}},
		{"NotFound", "com.missing.app", newToken, false, false,
			[]State{StateIdle, StateValidating, StateValidated, StateLocating, StateNotFound}},
		{"InconsistentSource", "com.example.app", newToken, false, true,
			append(append([]State{}, toPatched...), StateInconsistent)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			path := writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
			m := NewManager(localShell(), testConfig(root))
			switched(t, m, "0")
			if tc.tamper {
				require.NoError(t, os.WriteFile(path, []byte(userStore("com.example.app", "5555555555555555")), 0o600))
			}

			var out *MutationOutcome
			if tc.preview {
				out, _ = m.Preview(tc.pkg, tc.token)
			} else {
				out, _ = m.Mutate(context.Background(), tc.pkg, tc.token)
			}
			require.NotNil(t, out)
			assert.Equal(t, tc.want, out.Trail)
			assert.Equal(t, tc.want[len(tc.want)-1], out.State)
		})
	}
}

// blockingExec holds the commit's temp-file write until released.
type blockingExec struct {
	executor.Executor
	started chan struct{}
	release chan struct{}
}

func (b *blockingExec) Execute(ctx context.Context, cmd executor.Command) (executor.Result, error) {
	if strings.HasPrefix(cmd.Line, "umask 077") {
		close(b.started)
		<-b.release
	}
	return b.Executor.Execute(ctx, cmd)
}

func TestConcurrentOperationsAreRejected(t *testing.T) {
	root := t.TempDir()
	writeUserStore(t, root, "0", []byte(userStore("com.example.app", "abcdef0123456789")))
	writeUserStore(t, root, "10", []byte(userStore("com.work.mail", "9999999999999999")))

	exec := &blockingExec{Executor: localShell(), started: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(exec, testConfig(root))
	switched(t, m, "0")

	type result struct {
		out *MutationOutcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := m.Mutate(context.Background(), "com.example.app", newToken)
		done <- result{out, err}
	}()
	<-exec.started

	_, err := m.Mutate(context.Background(), "org.example.notes", newToken)
	assert.ErrorIs(t, err, kerrors.ErrBusy)
	_, err = m.SwitchTo(context.Background(), "10")
	assert.ErrorIs(t, err, kerrors.ErrBusy)
	assert.ErrorIs(t, m.Reboot(context.Background()), kerrors.ErrBusy)
	_, err = m.Preview("org.example.notes", newToken)
	assert.ErrorIs(t, err, kerrors.ErrBusy)
	_, err = m.Backup(context.Background())
	assert.ErrorIs(t, err, kerrors.ErrBusy)
	assert.NoFileExists(t, testConfig(root).BackupPath("0"))

	close(exec.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, StateCommitted, res.out.State)
	assert.Equal(t, "0", m.ActiveUser())

	dst, err := m.Backup(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, dst)

	switched(t, m, "10")
}

func TestBackup(t *testing.T) {
	root := t.TempDir()
	content := gzipBytes(t, []byte(userStore("com.example.app", "abcdef0123456789")))
	writeUserStore(t, root, "10", content)
	m := NewManager(localShell(), testConfig(root))
	switched(t, m, "10")

	dst, err := m.Backup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "backup", "10", "settings_ssaid.xml"), dst)

	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, copied, "backup must keep the native encoding")

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReboot(t *testing.T) {
	cfg := configs.DefaultConfig()

	fake := (&executortest.Fake{}).On("reboot", executortest.Response{})
	require.NoError(t, NewManager(fake, cfg).Reboot(context.Background()))
	assert.Equal(t, []string{"reboot"}, fake.Calls())

	failing := (&executortest.Fake{}).On("reboot", executortest.Response{ExitCode: 1, Stderr: "not permitted"})
	err := NewManager(failing, cfg).Reboot(context.Background())
	assert.ErrorIs(t, err, kerrors.ErrExec)
}
