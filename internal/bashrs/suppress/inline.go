// Package suppress implements the two ways a finding can be silenced:
// inline "# shellcheck disable=" directives (spec.md §4.H) and
// .bashrsignore gitignore-style path matching.
package suppress

import (
	"strings"
)

// Inline is the parsed set of inline suppression directives for one file.
type Inline struct {
	// fileWide holds codes disabled for every line (a directive on the
	// file's first non-blank, non-shebang line).
	fileWide map[string]bool
	// perLine holds codes disabled for one specific line (a directive on
	// the comment line immediately preceding it, or trailing its own code).
	perLine map[int]map[string]bool
}

const disableMarker = "disable="

// ParseInline scans src for "# shellcheck disable=SCxxxx[,SCyyyy]"
// directives. Parsing is strict about requiring the disable= token but
// whitespace-tolerant around it, per spec.md §4.H. A directive on its own
// comment line applies to the next line (or to the whole file when it is
// the first non-blank, non-shebang line); a directive after code on the
// same line applies to that line.
func ParseInline(src []byte) *Inline {
	lines := strings.Split(string(src), "\n")
	in := &Inline{fileWide: map[string]bool{}, perLine: map[int]map[string]bool{}}

	firstCodeLine := firstNonShebangLine(lines)

	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		target := lineNo + 1
		if !strings.HasPrefix(trimmed, "#") {
			hash := strings.LastIndex(trimmed, "#")
			if hash <= 0 || (trimmed[hash-1] != ' ' && trimmed[hash-1] != '\t') {
				continue
			}
			trimmed = trimmed[hash:]
			target = lineNo
		}
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		idx := strings.Index(body, disableMarker)
		if idx < 0 {
			continue
		}
		// Must be "shellcheck disable=..." (tolerating extra whitespace
		// between "shellcheck" and "disable=").
		head := strings.TrimSpace(body[:idx])
		if head != "shellcheck" {
			continue
		}
		codes := parseCodeList(body[idx+len(disableMarker):])
		if len(codes) == 0 {
			continue
		}

		if lineNo == firstCodeLine && target != lineNo {
			for _, c := range codes {
				in.fileWide[c] = true
			}
			continue
		}
		if in.perLine[target] == nil {
			in.perLine[target] = map[string]bool{}
		}
		for _, c := range codes {
			in.perLine[target][c] = true
		}
	}
	return in
}

// firstNonShebangLine returns the 1-indexed number of the first
// non-blank line, skipping a leading shebang — the position a file-level
// directive must occupy.
func firstNonShebangLine(lines []string) int {
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "#!") {
			continue
		}
		return i + 1
	}
	return 1
}

func parseCodeList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Suppressed reports whether code is disabled at lineNo, either file-wide
// by a directive on the immediately preceding line, or by one trailing
// lineNo's own code.
func (in *Inline) Suppressed(code string, lineNo int) bool {
	if in == nil {
		return false
	}
	if in.fileWide[code] {
		return true
	}
	return in.perLine[lineNo][code]
}
