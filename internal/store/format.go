package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
)

// Encoding is the physical form a store was found in.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	TextXML
	PackedBinary
)

func (e Encoding) String() string {
	switch e {
	case TextXML:
		return "xml"
	case PackedBinary:
		return "abx"
	default:
		return "unknown"
	}
}

// sniffLen bounds how much of the store Detect inspects.
const sniffLen = 512

var (
	abxMagic     = []byte("ABX\x00")
	utf8BOM      = []byte("\xef\xbb\xbf")
	xmlSignature = []byte("<?xml")
)

// Detect classifies raw store content. It never parses the binary form.
func Detect(content []byte) (Encoding, error) {
	if len(content) == 0 {
		return EncodingUnknown, fmt.Errorf("%w: store is empty", kerrors.ErrDetection)
	}
	if bytes.HasPrefix(content, abxMagic) {
		return PackedBinary, nil
	}

	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, utf8BOM), " \t\r\n")

	if bytes.HasPrefix(trimmed, xmlSignature) {
		return TextXML, nil
	}
	if !isPrintable(head, len(content) > sniffLen) {
		return PackedBinary, nil
	}
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return TextXML, nil
	}
	return EncodingUnknown, fmt.Errorf("%w: text content has no XML signature", kerrors.ErrDetection)
}

// isPrintable reports whether b is UTF-8 text without control characters.
// A rune cut off by truncation is tolerated.
func isPrintable(b []byte, truncated bool) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			if truncated && len(b) < utf8.UTFMax && !utf8.FullRune(b) {
				return true
			}
			return false
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
		if r == 0x7f {
			return false
		}
		b = b[size:]
	}
	return true
}

// ClassifyProbe classifies the output of `file -b` for a store. Text the
// probe does not recognize as XML is as ambiguous as it is to Detect.
func ClassifyProbe(output string) (Encoding, error) {
	desc := strings.ToLower(strings.TrimSpace(output))
	switch {
	case desc == "":
		return EncodingUnknown, fmt.Errorf("%w: empty probe result", kerrors.ErrDetection)
	case strings.Contains(desc, "xml"):
		return TextXML, nil
	case strings.Contains(desc, "text"):
		return EncodingUnknown, fmt.Errorf("%w: probe reports text without an XML signature", kerrors.ErrDetection)
	case strings.Contains(desc, "data"):
		return PackedBinary, nil
	default:
		return EncodingUnknown, fmt.Errorf("%w: unrecognized probe result %q", kerrors.ErrDetection, desc)
	}
}

// Read returns the raw bytes of the store at path.
func Read(ctx context.Context, e executor.Executor, path string) ([]byte, error) {
	content, err := executor.Run(ctx, e, "cat "+executor.Quote(path))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", kerrors.ErrDetection, path, err)
	}
	return content, nil
}

// Probe runs the file-type probe on path and returns its description.
func Probe(ctx context.Context, e executor.Executor, path string) (string, error) {
	out, err := executor.Run(ctx, e, "file -b "+executor.Quote(path))
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}
