package report

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"floorsense/internal/assess"
)

// Diff returns a unified diff of the text renderings of a and b, or "" when
// they render identically.
func Diff(a, b assess.Report, fromName, toName string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Text(a)),
		B:        difflib.SplitLines(Text(b)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s %s: %w", fromName, toName, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}
