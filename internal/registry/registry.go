package registry

import (
	"fmt"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/store"
)

// PlatformPackage is the record the platform keeps for itself. It is never
// offered for selection.
const PlatformPackage = "android"

// Record is one <setting> element of the store.
type Record struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Package       string `json:"package"`
	Value         string `json:"value"`
	DefaultValue  string `json:"default_value"`
	DefaultSysSet bool   `json:"default_sys_set"`
	Tag           string `json:"tag,omitempty"`
}

// Registry is every record loaded from one user's store at one point in time.
type Registry struct {
	// SourcePath is the store the registry was loaded from.
	SourcePath string

	// Encoding is the form the store was found in. A PackedBinary store is
	// re-encoded when a patch is committed.
	Encoding store.Encoding

	rawText    []byte
	records    []Record
	index      map[string]int
	generation int
}

// RawText returns a copy of the text document the registry currently reflects.
func (r *Registry) RawText() []byte {
	return append([]byte(nil), r.rawText...)
}

// Len returns the number of records, including the platform record.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns all records in document order.
func (r *Registry) Records() []Record {
	return append([]Record(nil), r.records...)
}

// Selectable returns the records a user may pick, in document order.
func (r *Registry) Selectable() []Record {
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Package == PlatformPackage {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Lookup returns the record for pkg.
func (r *Registry) Lookup(pkg string) (Record, bool) {
	i, ok := r.index[pkg]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// DefaultToken returns the platform-assigned default for pkg. It does not
// change anything; restoring it is a separate Apply.
func (r *Registry) DefaultToken(pkg string) (string, error) {
	rec, ok := r.Lookup(pkg)
	if !ok {
		return "", fmt.Errorf("%w: %s", kerrors.ErrNotFound, pkg)
	}
	return rec.DefaultValue, nil
}

// Accept makes a committed patch the registry's new state. A patch computed
// against an older state of the registry is rejected.
func (r *Registry) Accept(p *PatchResult) error {
	if p == nil || p.registry != r || p.generation != r.generation {
		return fmt.Errorf("%w: patch was computed against a different snapshot", kerrors.ErrConsistency)
	}
	i, ok := r.index[p.Record.Package]
	if !ok {
		return fmt.Errorf("%w: %s", kerrors.ErrNotFound, p.Record.Package)
	}
	r.rawText = p.Text
	r.records[i] = p.Record
	r.generation++
	return nil
}
