package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
	"github.com/google/uuid"
)

// StoreMode is the permission the committed store must carry.
const StoreMode = "600"

// Committer replaces a store with new content without ever leaving the
// canonical path half-written.
type Committer struct {
	exec  executor.Executor
	codec *Codec

	// Owner is passed to chown before the replace when non-empty, e.g. "system:system".
	Owner string
}

// NewCommitter returns a Committer that re-encodes through codec when needed.
func NewCommitter(e executor.Executor, codec *Codec) *Committer {
	return &Committer{exec: e, codec: codec}
}

// Commit writes text to path in the given encoding.
//
// The content is written to a temporary file beside path, read back and
// compared, re-encoded when enc is PackedBinary, restricted to owner-only
// access and only then renamed over path. Temporary files are removed on
// every exit path.
func (c *Committer) Commit(ctx context.Context, path string, text []byte, enc Encoding) error {
	if enc != TextXML && enc != PackedBinary {
		return fmt.Errorf("%w: cannot commit %s store", kerrors.ErrCommitFailed, enc)
	}

	id := uuid.NewString()[:8]
	tmpText := fmt.Sprintf("%s.%s.tmp", path, id)
	tmpBinary := fmt.Sprintf("%s.%s.abx.tmp", path, id)
	defer c.cleanup(tmpText, tmpBinary)

	write := fmt.Sprintf("umask 077 && cat > %s", executor.Quote(tmpText))
	if _, err := executor.RunWithInput(ctx, c.exec, write, text); err != nil {
		return fmt.Errorf("%w: writing %s: %w", kerrors.ErrCommitFailed, tmpText, err)
	}

	written, err := executor.Run(ctx, c.exec, "cat "+executor.Quote(tmpText))
	if err != nil {
		return fmt.Errorf("%w: verifying %s: %w", kerrors.ErrCommitFailed, tmpText, err)
	}
	if !bytes.Equal(written, text) {
		return fmt.Errorf("%w: %s does not match the patched content", kerrors.ErrCommitFailed, tmpText)
	}

	final := tmpText
	if enc == PackedBinary {
		if err := c.codec.ToBinary(ctx, tmpText, tmpBinary); err != nil {
			return err
		}
		packed, err := executor.Run(ctx, c.exec, "cat "+executor.Quote(tmpBinary))
		if err != nil {
			return fmt.Errorf("%w: verifying %s: %w", kerrors.ErrCommitFailed, tmpBinary, err)
		}
		if got, err := Detect(packed); err != nil || got != PackedBinary {
			return fmt.Errorf("%w: converter did not produce a packed store", kerrors.ErrCodec)
		}
		final = tmpBinary
	}

	if _, err := executor.Run(ctx, c.exec, fmt.Sprintf("chmod %s %s", StoreMode, executor.Quote(final))); err != nil {
		return fmt.Errorf("%w: setting permissions on %s: %w", kerrors.ErrCommitFailed, final, err)
	}
	if c.Owner != "" {
		chown := fmt.Sprintf("chown %s %s", executor.Quote(c.Owner), executor.Quote(final))
		if _, err := executor.Run(ctx, c.exec, chown); err != nil {
			return fmt.Errorf("%w: changing owner of %s: %w", kerrors.ErrCommitFailed, final, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrCommitFailed, err)
	}

	move := fmt.Sprintf("mv -f %s %s", executor.Quote(final), executor.Quote(path))
	if _, err := executor.Run(ctx, c.exec, move); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", kerrors.ErrCommitFailed, filepath.Base(path), err)
	}
	return nil
}

// cleanup removes temporary files. It uses a fresh context so a cancelled
// commit still tidies up.
func (c *Committer) cleanup(paths ...string) {
	line := "rm -f"
	for _, p := range paths {
		line += " " + executor.Quote(p)
	}
	_, _ = c.exec.Execute(context.Background(), executor.Command{Line: line})
}
