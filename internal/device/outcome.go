package device

import (
	"errors"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/registry"
)

// State is a step of one mutation attempt.
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateValidated    State = "validated"
	StateRejected     State = "rejected"
	StateLocating     State = "locating"
	StateLocated      State = "located"
	StateNotFound     State = "not_found"
	StatePatching     State = "patching"
	StatePatched      State = "patched"
	StateInconsistent State = "inconsistent_source"
	StateCommitting   State = "committing"
	StateCommitted    State = "committed"
	StateCommitFailed State = "commit_failed"
)

// Terminal reports whether s ends an attempt. Patched is terminal only for previews.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateNotFound, StateInconsistent, StateCommitted, StateCommitFailed:
		return true
	}
	return false
}

// MutationOutcome reports how far a mutation attempt got.
type MutationOutcome struct {
	UserID  string `json:"user_id"`
	Package string `json:"package"`
	Path    string `json:"path"`
	State   State  `json:"state"`

	// Trail lists every state the attempt passed through, ending with State.
	Trail []State `json:"trail,omitempty"`

	// Previous and Record are set once the patch has been computed.
	Previous registry.Record `json:"previous"`
	Record   registry.Record `json:"record"`

	// Start and End delimit the replaced bytes of the text document.
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

func newOutcome(userID, pkg, path string) *MutationOutcome {
	return &MutationOutcome{
		UserID:  userID,
		Package: pkg,
		Path:    path,
		State:   StateIdle,
		Trail:   []State{StateIdle},
	}
}

// advance moves the attempt to s.
func (o *MutationOutcome) advance(s State) {
	o.State = s
	o.Trail = append(o.Trail, s)
}

// Changed reports whether the committed value differs from the previous one.
func (o *MutationOutcome) Changed() bool {
	return o.Previous.Value != o.Record.Value
}

// patchFailureState maps an Apply error raised while patching to the
// terminal state it ends in. Validation and lookup have already passed by
// then, so their errors only appear if the registry changed underneath.
func patchFailureState(err error) State {
	switch {
	case errors.Is(err, kerrors.ErrValidation):
		return StateRejected
	case errors.Is(err, kerrors.ErrNotFound):
		return StateNotFound
	default:
		return StateInconsistent
	}
}
