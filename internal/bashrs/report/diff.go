package report

import (
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"
)

// WriteMarkdownDiff renders `purify --report markdown`'s unified diff of
// original vs. purified source, fenced as a ```diff code block so it
// renders with additions/deletions highlighted wherever the markdown is
// viewed (a PR description, a terminal markdown pager).
func WriteMarkdownDiff(w io.Writer, path string, original, purified []byte) error {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(purified)),
		FromFile: path,
		ToFile:   path + " (purified)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("report: computing diff for %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(w, "```diff\n%s```\n", text); err != nil {
		return err
	}
	return nil
}
