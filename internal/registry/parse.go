package registry

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/store"
	"golang.org/x/text/encoding/ianaindex"
)

const settingElement = "setting"

// Warning describes a <setting> element that was skipped.
type Warning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Parse builds a Registry from the text form of a store. No registry is
// returned when the document is malformed, a setting has no value, or a
// package appears twice. Settings without a package are skipped and
// reported as warnings.
func Parse(text []byte, sourcePath string, enc store.Encoding) (*Registry, []Warning, error) {
	dec := xml.NewDecoder(bytes.NewReader(text))
	dec.Strict = true
	dec.CharsetReader = charsetReader

	reg := &Registry{
		SourcePath: sourcePath,
		Encoding:   enc,
		rawText:    append([]byte(nil), text...),
		index:      make(map[string]int),
	}
	var warnings []Warning
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", kerrors.ErrParse, sourcePath, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		// Namespaced elements are not settings; the tag scanner used for
		// patching only matches the bare name.
		if start.Name.Local != settingElement || start.Name.Space != "" {
			continue
		}

		line, _ := dec.InputPos()
		rec, present := recordFromAttrs(start.Attr)

		if !present["package"] || rec.Package == "" {
			warnings = append(warnings, Warning{Line: line, Message: "setting has no package attribute, skipped"})
			continue
		}
		if !present["value"] {
			return nil, nil, fmt.Errorf("%w: %s: line %d: setting for %s has no value attribute",
				kerrors.ErrParse, sourcePath, line, rec.Package)
		}
		if _, dup := reg.index[rec.Package]; dup {
			return nil, nil, fmt.Errorf("%w: %s: line %d: duplicate setting for %s",
				kerrors.ErrParse, sourcePath, line, rec.Package)
		}

		reg.index[rec.Package] = len(reg.records)
		reg.records = append(reg.records, rec)
	}

	if !sawRoot {
		return nil, nil, fmt.Errorf("%w: %s: document has no root element", kerrors.ErrParse, sourcePath)
	}
	return reg, warnings, nil
}

func recordFromAttrs(attrs []xml.Attr) (Record, map[string]bool) {
	var rec Record
	present := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if a.Name.Space != "" {
			continue
		}
		present[a.Name.Local] = true
		switch a.Name.Local {
		case "id":
			rec.ID = a.Value
		case "name":
			rec.Name = a.Value
		case "package":
			rec.Package = a.Value
		case "value":
			rec.Value = a.Value
		case "defaultValue":
			rec.DefaultValue = a.Value
		case "defaultSysSet":
			rec.DefaultSysSet = a.Value == "true"
		case "tag":
			rec.Tag = a.Value
		}
	}
	return rec, present
}

// charsetReader decodes documents that declare a non-UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
