// Package rules is the lint rule engine: a registry of rule metadata
// loaded from an embedded catalog plus a set of real checker functions,
// and the Lint driver that runs them over a parsed file.
package rules

import (
	"github.com/paiml/bashrs/internal/bashrs/ast"
	"github.com/paiml/bashrs/internal/bashrs/diag"
	"github.com/paiml/bashrs/internal/bashrs/source"
)

// ShellCompat classifies which shells a rule applies to (spec.md §4.F).
type ShellCompat string

const (
	Universal ShellCompat = "universal"
	NotSh     ShellCompat = "not_sh"
	BashOnly  ShellCompat = "bash_only"
	ZshOnly   ShellCompat = "zsh_only"
	ShOnly    ShellCompat = "sh_only"
	BashZsh   ShellCompat = "bash_zsh"
)

// AppliesTo reports whether a rule with this compatibility fires for st.
func (c ShellCompat) AppliesTo(st ShellType) bool {
	switch c {
	case Universal:
		return true
	case NotSh:
		return st != Sh
	case BashOnly:
		return st == Bash
	case ZshOnly:
		return st == Zsh
	case ShOnly:
		return st == Sh
	case BashZsh:
		return st == Bash || st == Zsh
	default:
		return true
	}
}

// catalogEntry is the shape of one row of catalog.yaml.
type catalogEntry struct {
	Code        string `yaml:"code"`
	Category    string `yaml:"category"`
	Severity    string `yaml:"severity"`
	Compat      string `yaml:"compat"`
	Description string `yaml:"description"`
	HelpTopic   string `yaml:"help_topic"`
}

// CheckFunc is a rule's pure check function: source bytes plus the parsed
// tree in, a list of findings out. Implementations must not mutate f or
// stmts.
type CheckFunc func(f *source.File, stmts []ast.Stmt) []diag.Diagnostic

// Metadata is everything the registry and CLI need to know about one
// rule, independent of whether it has a registered checker.
type Metadata struct {
	Code        string
	Category    string
	Severity    diag.Severity
	Compat      ShellCompat
	Description string
	HelpTopic   string

	check CheckFunc // nil for catalog-only (unimplemented) rules
}

// Implemented reports whether this rule has a real checker registered,
// vs. being present in the catalog only for routing and suppression
// purposes (spec.md §4.F "[EXPANDED]").
func (m Metadata) Implemented() bool { return m.check != nil }

func parseSeverity(s string) diag.Severity {
	switch s {
	case "error":
		return diag.Error
	case "warning":
		return diag.Warning
	case "risk":
		return diag.Risk
	case "perf":
		return diag.Perf
	case "info":
		return diag.Info
	default:
		return diag.Note
	}
}
