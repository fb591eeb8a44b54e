package store

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
)

const (
	DefaultToTextCommand   = "abx2xml {in} -"
	DefaultToBinaryCommand = "xml2abx {in} {out}"
)

// Codec converts between the packed and text encodings through the
// device's converter tools. It never interprets the packed layout itself.
type Codec struct {
	exec     executor.Executor
	toText   string
	toBinary string
}

// NewCodec returns a Codec using the given command templates. Empty
// templates fall back to abx2xml/xml2abx.
func NewCodec(e executor.Executor, toText, toBinary string) *Codec {
	if toText == "" {
		toText = DefaultToTextCommand
	}
	if toBinary == "" {
		toBinary = DefaultToBinaryCommand
	}
	return &Codec{exec: e, toText: toText, toBinary: toBinary}
}

// ToText converts the packed store at path and returns the text document.
func (c *Codec) ToText(ctx context.Context, path string) ([]byte, error) {
	line := executor.Expand(c.toText, map[string]string{"in": path, "out": "-"})
	out, err := executor.Run(ctx, c.exec, line)
	if err != nil {
		return nil, fmt.Errorf("%w: converting %s to text: %w", kerrors.ErrCodec, path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: converter produced no output for %s", kerrors.ErrCodec, path)
	}
	if enc, err := Detect(out); err != nil || enc != TextXML {
		return nil, fmt.Errorf("%w: converter output for %s is not an XML document", kerrors.ErrCodec, path)
	}
	return out, nil
}

// ToBinary encodes the text document at textPath into binaryPath.
func (c *Codec) ToBinary(ctx context.Context, textPath, binaryPath string) error {
	line := executor.Expand(c.toBinary, map[string]string{"in": textPath, "out": binaryPath})
	if _, err := executor.Run(ctx, c.exec, line); err != nil {
		return fmt.Errorf("%w: converting %s to binary: %w", kerrors.ErrCodec, textPath, err)
	}
	return nil
}
