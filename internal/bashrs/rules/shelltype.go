package rules

import (
	"path/filepath"
	"strings"
)

// ShellType is the detected dialect a file is linted as (spec.md §3/§4.F).
type ShellType int

const (
	Bash ShellType = iota
	Zsh
	Sh
	Ksh
)

func (t ShellType) String() string {
	switch t {
	case Zsh:
		return "zsh"
	case Sh:
		return "sh"
	case Ksh:
		return "ksh"
	default:
		return "bash"
	}
}

var extensionShell = map[string]ShellType{
	".zsh": Zsh, ".zshrc": Zsh, ".zshenv": Zsh, ".zprofile": Zsh,
	".bash": Bash, ".bashrc": Bash, ".bash_profile": Bash, ".bash_login": Bash, ".bash_logout": Bash,
	".sh":  Sh,
	".ksh": Ksh,
}

var filenameShell = map[string]ShellType{
	".bashrc": Bash, ".bash_profile": Bash, ".zshrc": Zsh,
}

// DetectShellType implements the five-step priority list in spec.md §4.F:
// shellcheck shell= directive, shebang, extension, filename, default bash.
func DetectShellType(path string, src []byte) ShellType {
	if st, ok := detectFromDirective(src); ok {
		return st
	}
	if st, ok := detectFromShebang(src); ok {
		return st
	}
	ext := filepath.Ext(path)
	if st, ok := extensionShell[ext]; ok {
		return st
	}
	base := filepath.Base(path)
	if st, ok := filenameShell[base]; ok {
		return st
	}
	return Bash
}

// detectFromDirective looks for "# shellcheck shell=<name>" in the first
// 20 lines, anywhere a comment appears (not just the top of the file).
func detectFromDirective(src []byte) (ShellType, bool) {
	lines := strings.SplitN(string(src), "\n", 21)
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		const marker = "shellcheck shell="
		idx := strings.Index(body, marker)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(body[idx+len(marker):])
		name = strings.Fields(name)[0]
		if st, ok := nameToShellType(name); ok {
			return st, true
		}
	}
	return 0, false
}

func detectFromShebang(src []byte) (ShellType, bool) {
	nl := strings.IndexByte(string(src), '\n')
	var first string
	if nl < 0 {
		first = string(src)
	} else {
		first = string(src[:nl])
	}
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, "#!") {
		return 0, false
	}
	interp := strings.TrimPrefix(first, "#!")
	fields := strings.Fields(interp)
	if len(fields) == 0 {
		return 0, false
	}
	last := fields[len(fields)-1]
	if filepath.Base(fields[0]) == "env" && len(fields) > 1 {
		last = fields[len(fields)-1]
	} else {
		last = filepath.Base(fields[0])
	}
	return nameToShellType(last)
}

// ParseShellType maps a `--shell` flag value to a ShellType. "auto" (or
// "", the flag's default) reports ok=false so the caller falls back to
// DetectShellType instead of forcing a dialect.
func ParseShellType(name string) (ShellType, bool) {
	if name == "" || name == "auto" {
		return 0, false
	}
	return nameToShellType(name)
}

func nameToShellType(name string) (ShellType, bool) {
	switch name {
	case "bash":
		return Bash, true
	case "zsh":
		return Zsh, true
	case "sh", "dash", "posix":
		return Sh, true
	case "ksh":
		return Ksh, true
	default:
		return 0, false
	}
}
