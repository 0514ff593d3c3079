// Package snippets extracts coding-challenge snippets from annotated source
// files and keeps them in a reloadable in-memory repository.
//
// A snippet is delimited by marker comments:
//
//	// vuln-code-snippet start loginAdminChallenge
//	...
//	db.query(sql) // vuln-code-snippet vuln-line loginAdminChallenge
//	...
//	// vuln-code-snippet end loginAdminChallenge
//
// Lines tagged hide-line, or enclosed by hide-start/hide-end, are removed
// before line numbers are assigned.
package snippets

import (
	"slices"
	"strings"
)

const marker = "vuln-code-snippet"

// Directive kinds.
const (
	kindStart       = "start"
	kindEnd         = "end"
	kindHideLine    = "hide-line"
	kindHideStart   = "hide-start"
	kindHideEnd     = "hide-end"
	kindVulnLine    = "vuln-line"
	kindNeutralLine = "neutral-line"
)

// Challenge is one code snippet and the lines that make up its answer.
type Challenge struct {
	Key          string `json:"key"`
	Snippet      string `json:"snippet"`
	VulnLines    []int  `json:"vulnLines"`
	NeutralLines []int  `json:"neutralLines"`
	File         string `json:"file,omitempty"`
}

// directive is a marker comment found on a single line.
type directive struct {
	kind string
	keys []string
	// code is the line text in front of the marker comment.
	code string
}

// HasMarkers reports whether src contains at least one snippet start marker.
func HasMarkers(src []byte) bool {
	return strings.Contains(string(src), marker+" "+kindStart)
}

// ParseFile extracts every challenge whose start marker appears in src.
// file is recorded on each challenge and used in error messages only.
func ParseFile(file string, src []byte) ([]*Challenge, error) {
	lines := splitLines(string(src))

	var challenges []*Challenge
	for _, key := range startKeys(lines) {
		c, err := extract(lines, key)
		if err != nil {
			if bb, ok := err.(*BrokenBoundaryError); ok {
				bb.File = file
			}
			return nil, err
		}
		c.File = file
		challenges = append(challenges, c)
	}
	return challenges, nil
}

// extract builds the challenge for key. The snippet runs from the first start
// marker naming key to the last end marker naming key.
func extract(lines []string, key string) (*Challenge, error) {
	start, end := -1, -1
	for i, l := range lines {
		d, ok := parseDirective(l)
		if !ok || !slices.Contains(d.keys, key) {
			continue
		}
		switch {
		case d.kind == kindStart && start < 0:
			start = i
		case d.kind == kindEnd && start >= 0:
			end = i
		}
	}
	if start < 0 || end < 0 {
		return nil, &BrokenBoundaryError{Key: key}
	}

	var body []string
	hiding := false
	for _, l := range lines[start+1 : end] {
		if d, ok := parseDirective(l); ok {
			switch d.kind {
			case kindHideLine:
				continue
			case kindHideStart:
				hiding = true
				continue
			case kindHideEnd:
				hiding = false
				continue
			case kindStart, kindEnd:
				// Boundaries of other snippets nested inside this one.
				if strings.TrimSpace(d.code) == "" {
					continue
				}
				l = d.code
			}
		}
		if hiding {
			continue
		}
		body = append(body, l)
	}

	text := strings.TrimSpace(strings.Join(body, "\n"))
	var out []string
	if text != "" {
		out = strings.Split(text, "\n")
	}

	c := &Challenge{
		Key:          key,
		VulnLines:    []int{},
		NeutralLines: []int{},
	}
	for i, l := range out {
		d, ok := parseDirective(l)
		if !ok {
			continue
		}
		switch d.kind {
		case kindVulnLine:
			if slices.Contains(d.keys, key) {
				c.VulnLines = append(c.VulnLines, i+1)
			}
		case kindNeutralLine:
			if slices.Contains(d.keys, key) {
				c.NeutralLines = append(c.NeutralLines, i+1)
			}
		default:
			continue
		}
		// Line tags are stripped whichever challenge they belong to.
		out[i] = d.code
	}
	c.Snippet = strings.Join(out, "\n")
	return c, nil
}

// startKeys returns the challenge keys named by start markers, in order of
// first appearance.
func startKeys(lines []string) []string {
	var keys []string
	for _, l := range lines {
		d, ok := parseDirective(l)
		if !ok || d.kind != kindStart {
			continue
		}
		for _, k := range d.keys {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// parseDirective recognises a marker comment on line.
func parseDirective(line string) (directive, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return directive{}, false
	}
	fields := strings.Fields(line[idx+len(marker):])
	if len(fields) == 0 {
		return directive{}, false
	}

	var keys []string
	for _, f := range fields[1:] {
		if f == "-->" || f == "*/" {
			continue
		}
		keys = append(keys, f)
	}
	return directive{
		kind: fields[0],
		keys: keys,
		code: stripComment(line[:idx]),
	}, true
}

// stripComment removes the comment opener that introduces a marker, leaving
// the code in front of it.
func stripComment(prefix string) string {
	prefix = strings.TrimRight(prefix, " \t")
	for _, opener := range []string{"<!--", "/*", "//", "#"} {
		if strings.HasSuffix(prefix, opener) {
			prefix = strings.TrimSuffix(prefix, opener)
			break
		}
	}
	return strings.TrimRight(prefix, " \t")
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
