package registry

import (
	"fmt"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
)

// PatchResult is a validated edit that has not been committed yet.
type PatchResult struct {
	// Text is the full document with only the target value replaced.
	Text []byte

	// Record is the target record carrying the new value.
	Record Record

	// Previous is the target record as loaded.
	Previous Record

	// Start and End delimit the replaced value bytes in the original text.
	Start, End int

	registry   *Registry
	generation int
}

// Apply computes the edit that sets pkg's value to token.
//
// The token is validated before anything else. The edit is confined to
// the value attribute of the single <setting> tag whose package attribute
// is pkg, and only when that attribute still holds the loaded value; every
// other byte of the document is kept. Apply performs no I/O and does not
// change reg; pass the result to Registry.Accept once it is committed.
func Apply(reg *Registry, pkg, token string) (*PatchResult, error) {
	normalized, err := ValidateToken(token)
	if err != nil {
		return nil, err
	}

	rec, ok := reg.Lookup(pkg)
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, pkg)
	}

	tags, err := scanSettingTags(reg.rawText)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", kerrors.ErrConsistency, reg.SourcePath, err)
	}

	var window tagSpan
	matches := 0
	for _, tag := range tags {
		if p, ok := tag.value("package"); ok && p == pkg {
			window = tag
			matches++
		}
	}
	if matches != 1 {
		return nil, fmt.Errorf("%w: found %d setting elements for %s", kerrors.ErrConsistency, matches, pkg)
	}

	attr, n := window.attr("value")
	if n != 1 {
		return nil, fmt.Errorf("%w: setting for %s has %d value attributes", kerrors.ErrConsistency, pkg, n)
	}
	if current, _ := window.value("value"); current != rec.Value {
		return nil, fmt.Errorf("%w: value for %s is %q on disk, loaded %q",
			kerrors.ErrConsistency, pkg, current, rec.Value)
	}

	text := make([]byte, 0, len(reg.rawText)-(attr.End-attr.Start)+len(normalized))
	text = append(text, reg.rawText[:attr.Start]...)
	text = append(text, normalized...)
	text = append(text, reg.rawText[attr.End:]...)

	updated := rec
	updated.Value = normalized

	return &PatchResult{
		Text:       text,
		Record:     updated,
		Previous:   rec,
		Start:      attr.Start,
		End:        attr.End,
		registry:   reg,
		generation: reg.generation,
	}, nil
}
