package device

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
)

// userInfoPattern matches the records printed by `pm list users`, e.g.
// "UserInfo{10:Work profile:1030} running".
var userInfoPattern = regexp.MustCompile(`UserInfo\{(\d+):`)

// ListUsers returns the device's user ids in ascending numeric order.
func (m *Manager) ListUsers(ctx context.Context) ([]string, error) {
	var (
		ids []string
		err error
	)
	if m.cfg.Device.UserSource == configs.UserSourceScan {
		ids, err = m.scanUsers(ctx)
	} else {
		ids, err = m.listUsersFromCommand(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, kerrors.ErrNoUsers
	}
	SortUserIDs(ids)
	return ids, nil
}

func (m *Manager) listUsersFromCommand(ctx context.Context) ([]string, error) {
	out, err := executor.Run(ctx, m.exec, m.cfg.Commands.ListUsers)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return ParseUserList(string(out)), nil
}

// ParseUserList extracts the distinct user ids from `pm list users` output.
// Anything around the UserInfo records is ignored.
func ParseUserList(output string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, match := range userInfoPattern.FindAllStringSubmatch(output, -1) {
		id := normalizeUserID(match[1])
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// scanUsers finds every store matching the store path template.
func (m *Manager) scanUsers(ctx context.Context) ([]string, error) {
	template := m.cfg.Device.StorePath
	pattern := strings.ReplaceAll(template, configs.UserPlaceholder, "*")

	parts := strings.Split(template, configs.UserPlaceholder)
	for i, p := range parts {
		parts[i] = executor.Quote(p)
	}
	line := "ls -1d " + strings.Join(parts, "*")

	out, err := executor.Run(ctx, m.exec, line)
	if err != nil {
		return nil, fmt.Errorf("%w: no store matches %s: %w", kerrors.ErrNoUsers, pattern, err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, p := range strings.Split(string(out), "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return nil, fmt.Errorf("%w: device.store_path: %w", kerrors.ErrInvalidConfig, err)
		}
		if !ok {
			continue
		}
		if id, ok := UserFromPath(template, p); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// UserFromPath recovers the user id that produced path from the store path
// template. Every placeholder in the template must resolve to the same id.
func UserFromPath(template, path string) (string, bool) {
	tSegs := strings.Split(template, "/")
	pSegs := strings.Split(path, "/")
	if len(tSegs) != len(pSegs) {
		return "", false
	}

	id := ""
	for i, seg := range tSegs {
		if !strings.Contains(seg, configs.UserPlaceholder) {
			if seg != pSegs[i] {
				return "", false
			}
			continue
		}
		before, after, _ := strings.Cut(seg, configs.UserPlaceholder)
		got := pSegs[i]
		if len(got) < len(before)+len(after) || !strings.HasPrefix(got, before) || !strings.HasSuffix(got, after) {
			return "", false
		}
		candidate := got[len(before) : len(got)-len(after)]
		if strings.Contains(after, configs.UserPlaceholder) || (id != "" && candidate != id) {
			return "", false
		}
		id = candidate
	}
	if !configs.IsValidUserID(id) {
		return "", false
	}
	return normalizeUserID(id), true
}

// SortUserIDs sorts ids numerically, so "2" comes before "10".
func SortUserIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}

// normalizeUserID strips leading zeros so "010" and "10" name the same user.
func normalizeUserID(id string) string {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return strconv.FormatUint(n, 10)
	}
	return id
}
