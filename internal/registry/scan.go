package registry

import (
	"bytes"
	"errors"
	"html"
)

var errUnterminated = errors.New("unterminated markup")

// attrSpan is one attribute of a raw start tag. Start and End delimit the
// value bytes between the quotes.
type attrSpan struct {
	Name       string
	Raw        string
	Start, End int
}

// tagSpan is a raw <setting> start tag found in the document text.
type tagSpan struct {
	Start, End int
	Attrs      []attrSpan
}

func (t tagSpan) attr(name string) (attrSpan, int) {
	var found attrSpan
	n := 0
	for _, a := range t.Attrs {
		if a.Name == name {
			found = a
			n++
		}
	}
	return found, n
}

// value returns the unescaped value of the named attribute.
func (t tagSpan) value(name string) (string, bool) {
	a, n := t.attr(name)
	if n != 1 {
		return "", false
	}
	return html.UnescapeString(a.Raw), true
}

// scanSettingTags locates every <setting> start tag in text with the byte
// offsets of its attribute values. Comments, CDATA sections, processing
// instructions and declarations are skipped so commented-out settings are
// never matched.
func scanSettingTags(text []byte) ([]tagSpan, error) {
	var tags []tagSpan
	i := 0
	for {
		lt := bytes.IndexByte(text[i:], '<')
		if lt < 0 {
			return tags, nil
		}
		i += lt
		rest := text[i:]

		var skip []byte
		switch {
		case bytes.HasPrefix(rest, []byte("<!--")):
			skip = []byte("-->")
		case bytes.HasPrefix(rest, []byte("<![CDATA[")):
			skip = []byte("]]>")
		case bytes.HasPrefix(rest, []byte("<?")):
			skip = []byte("?>")
		}
		if skip != nil {
			end := bytes.Index(rest, skip)
			if end < 0 {
				return nil, errUnterminated
			}
			i += end + len(skip)
			continue
		}

		if isSettingTag(rest) {
			tag, err := scanAttrs(text, i, i+1+len(settingElement))
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
			i = tag.End
			continue
		}

		end, err := skipTag(text, i+1)
		if err != nil {
			return nil, err
		}
		i = end
	}
}

func isSettingTag(rest []byte) bool {
	name := []byte("<" + settingElement)
	if !bytes.HasPrefix(rest, name) || len(rest) == len(name) {
		return false
	}
	switch rest[len(name)] {
	case ' ', '\t', '\r', '\n', '/', '>':
		return true
	}
	return false
}

// skipTag returns the offset just past the '>' closing the markup that
// starts before pos, honoring quoted attribute values.
func skipTag(text []byte, pos int) (int, error) {
	var quote byte
	for ; pos < len(text); pos++ {
		c := text[pos]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return pos + 1, nil
		}
	}
	return 0, errUnterminated
}

func scanAttrs(text []byte, tagStart, pos int) (tagSpan, error) {
	tag := tagSpan{Start: tagStart}
	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			return tagSpan{}, errUnterminated
		}
		switch text[pos] {
		case '>':
			tag.End = pos + 1
			return tag, nil
		case '/':
			if pos+1 < len(text) && text[pos+1] == '>' {
				tag.End = pos + 2
				return tag, nil
			}
			return tagSpan{}, errors.New("stray '/' in setting tag")
		}

		nameStart := pos
		for pos < len(text) && !isSpace(text[pos]) && text[pos] != '=' && text[pos] != '>' && text[pos] != '/' {
			pos++
		}
		name := string(text[nameStart:pos])
		pos = skipSpace(text, pos)
		if name == "" || pos >= len(text) || text[pos] != '=' {
			return tagSpan{}, errors.New("malformed attribute in setting tag")
		}
		pos = skipSpace(text, pos+1)
		if pos >= len(text) || (text[pos] != '"' && text[pos] != '\'') {
			return tagSpan{}, errors.New("unquoted attribute value in setting tag")
		}
		quote := text[pos]
		valueStart := pos + 1
		valueEnd := bytes.IndexByte(text[valueStart:], quote)
		if valueEnd < 0 {
			return tagSpan{}, errUnterminated
		}
		valueEnd += valueStart

		tag.Attrs = append(tag.Attrs, attrSpan{
			Name:  name,
			Raw:   string(text[valueStart:valueEnd]),
			Start: valueStart,
			End:   valueEnd,
		})
		pos = valueEnd + 1
	}
}

func skipSpace(text []byte, pos int) int {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
