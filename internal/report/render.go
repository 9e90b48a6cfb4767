// Package report writes a computed report as text or JSON.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/newthinker/deepvalue/internal/core"
)

// DefaultDivider separates report blocks.
const DefaultDivider = "==============================="

// Render writes every section followed by the divider. Each metric is
// "Label: value", a verdict adds "Rule: true|false" on the next line.
func Render(w io.Writer, r *core.Report, divider string) error {
	if r == nil {
		return nil
	}
	if divider == "" {
		divider = DefaultDivider
	}

	bw := bufio.NewWriter(w)
	for _, s := range r.Sections {
		for _, m := range s.Metrics {
			fmt.Fprintf(bw, "%s: %s\n", m.Label, m.Display)
			if m.Verdict != nil {
				fmt.Fprintf(bw, "%s: %t\n", m.Verdict.Rule, m.Verdict.Holds)
			}
		}
		for _, n := range s.Notes {
			fmt.Fprintln(bw, n)
		}
		fmt.Fprintln(bw, divider)
	}
	return bw.Flush()
}

// Marshal encodes the report as indented JSON.
func Marshal(r *core.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
