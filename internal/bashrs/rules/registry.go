package rules

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Registry is the process-wide, read-only map from rule code to Metadata,
// built once at startup (spec.md §3 "Ownership lifecycle").
type Registry struct {
	byCode map[string]Metadata
}

var checkers = map[string]CheckFunc{}

// registerChecker is called from each rule's init() to attach a real
// check function to a catalog entry by code. Panics on a duplicate or
// unknown code: both are programmer errors caught at process start, not
// something a user input could trigger.
func registerChecker(code string, fn CheckFunc) {
	if _, dup := checkers[code]; dup {
		panic(fmt.Sprintf("rules: duplicate checker registration for %s", code))
	}
	checkers[code] = fn
}

// NewRegistry parses the embedded catalog and attaches any registered
// checkers to their catalog entries.
func NewRegistry() (*Registry, error) {
	var entries []catalogEntry
	if err := yaml.Unmarshal(catalogYAML, &entries); err != nil {
		return nil, fmt.Errorf("rules: parsing catalog.yaml: %w", err)
	}
	r := &Registry{byCode: make(map[string]Metadata, len(entries))}
	for _, e := range entries {
		m := Metadata{
			Code:        e.Code,
			Category:    e.Category,
			Severity:    parseSeverity(e.Severity),
			Compat:      ShellCompat(e.Compat),
			Description: e.Description,
			HelpTopic:   e.HelpTopic,
			check:       checkers[e.Code],
		}
		r.byCode[e.Code] = m
	}
	return r, nil
}

// Lookup returns the metadata for code and whether it exists in the
// catalog at all.
func (r *Registry) Lookup(code string) (Metadata, bool) {
	m, ok := r.byCode[code]
	return m, ok
}

// All returns every catalog entry, sorted by code.
func (r *Registry) All() []Metadata {
	out := make([]Metadata, 0, len(r.byCode))
	for _, m := range r.byCode {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Implemented returns every catalog entry that has a real checker,
// filtered to those applicable to shellType, sorted by code.
func (r *Registry) Implemented(shellType ShellType) []Metadata {
	all := r.All()
	out := all[:0:0]
	for _, m := range all {
		if m.Implemented() && m.Compat.AppliesTo(shellType) {
			out = append(out, m)
		}
	}
	return out
}
