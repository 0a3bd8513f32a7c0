package suppress

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is a parsed .bashrsignore: an ordered list of glob patterns,
// later entries overriding earlier ones, with "!"-prefixed re-include
// patterns (gitignore semantics, spec.md §4.H).
type IgnoreFile struct {
	Dir      string // directory the file was found in; patterns are relative to this
	patterns []ignorePattern
}

type ignorePattern struct {
	glob    string
	negate  bool
}

// ParseIgnoreFile reads and parses an ignore file at path, which is
// expected to sit in dir.
func ParseIgnoreFile(dir, path string) (*IgnoreFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ig := &IgnoreFile{Dir: dir}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue // comments are preserved as audit trail, never matched
		}
		negate := strings.HasPrefix(line, "!")
		if negate {
			line = strings.TrimPrefix(line, "!")
		}
		ig.patterns = append(ig.patterns, ignorePattern{glob: line, negate: negate})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ig, nil
}

// Match reports whether path (absolute, or relative to Dir) is ignored:
// the last matching pattern wins, and a later "!" pattern re-includes a
// path an earlier pattern excluded.
func (ig *IgnoreFile) Match(path string) bool {
	rel, err := filepath.Rel(ig.Dir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	ignored := false
	for _, p := range ig.patterns {
		if matchGlob(p.glob, rel) {
			ignored = !p.negate
		}
	}
	return ignored
}

// matchGlob supports the subset of gitignore glob syntax this tool
// needs: "**" segments, "*"/"?" within a segment, and a trailing "/" for
// directory-only patterns (treated the same as a bare name here, since
// callers only ever match single file paths).
func matchGlob(pattern, path string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if strings.Contains(pattern, "**") {
		return matchDoubleStarGlob(pattern, path)
	}
	if !strings.Contains(pattern, "/") {
		// A pattern with no slash matches the basename anywhere in the tree.
		ok, _ := filepath.Match(pattern, filepath.Base(path))
		if ok {
			return true
		}
		// Also try matching against each path segment for "dir/pattern" style trees.
		for _, seg := range strings.Split(path, "/") {
			if ok, _ := filepath.Match(pattern, seg); ok {
				return true
			}
		}
		return false
	}
	ok, _ := filepath.Match(pattern, path)
	return ok
}

func matchDoubleStarGlob(pattern, path string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")
	if prefix != "" && !strings.HasPrefix(path, prefix) {
		return false
	}
	if suffix == "" {
		return true
	}
	ok, _ := filepath.Match(suffix, filepath.Base(path))
	return ok
}

// FindUpward walks upward from startDir looking for a .bashrsignore file,
// returning the first one found (closest directory wins, per spec.md
// §4.H).
func FindUpward(startDir string) (*IgnoreFile, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ".bashrsignore")
		if _, err := os.Stat(candidate); err == nil {
			return ParseIgnoreFile(dir, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
