// Package report renders search results in currency units.
//
// Minor units are only converted back to decimal values here, at the
// presentation boundary; nothing in this package feeds back into a search.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/shopspring/decimal"
)

// Item is one selected amount in currency units
type Item struct {
	OriginID string `json:"origin_id"`
	Label    string `json:"label,omitempty"`
	Value    string `json:"value"`
}

// Match is a match in currency units
type Match struct {
	Target  string `json:"target"`
	Negated bool   `json:"negated,omitempty"`
	Items   []Item `json:"items"`
	Total   string `json:"total"`
}

// Summary is the terminal summary of a search
type Summary struct {
	Target     string  `json:"target"`
	Tolerance  string  `json:"tolerance"`
	Matches    int     `json:"matches"`
	Status     string  `json:"status"`
	Truncated  bool    `json:"truncated"`
	Candidates int     `json:"candidates"`
	Explored   int64   `json:"explored"`
	Elapsed    float64 `json:"elapsed_seconds"`
}

// Report is the full presentation of a result
type Report struct {
	Matches []Match `json:"matches"`
	Summary Summary `json:"summary"`
}

// FromMinorUnits converts minor units to a currency decimal
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -combination.MinorUnitExponent)
}

// FormatMinorUnits renders minor units with exactly two decimal places
func FormatMinorUnits(v int64) string {
	return FromMinorUnits(v).StringFixed(combination.MinorUnitExponent)
}

// Present converts a match to currency units
func Present(m types.Match) Match {
	items := make([]Item, len(m.Items))
	for i, a := range m.Items {
		items[i] = Item{
			OriginID: a.OriginID,
			Label:    a.Label,
			Value:    FormatMinorUnits(a.Value),
		}
	}
	return Match{
		Target:  FormatMinorUnits(m.Target),
		Negated: m.Negated,
		Items:   items,
		Total:   FormatMinorUnits(m.Total),
	}
}

// Build converts a result into its presentation
func Build(r *types.Result) Report {
	matches := make([]Match, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = Present(m)
	}
	return Report{
		Matches: matches,
		Summary: Summary{
			Target:     FormatMinorUnits(r.Target.Value),
			Tolerance:  FormatMinorUnits(r.Target.Tolerance),
			Matches:    len(r.Matches),
			Status:     string(r.Status),
			Truncated:  r.Truncated(),
			Candidates: r.Candidates,
			Explored:   r.Explored,
			Elapsed:    r.Elapsed.Seconds(),
		},
	}
}

// JSON writes the report as indented JSON
func JSON(w io.Writer, r *types.Result) error {
	b, err := json.MarshalIndent(Build(r), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Text writes one line per match followed by a summary line
func Text(w io.Writer, r *types.Result) error {
	rep := Build(r)

	var b strings.Builder
	if len(rep.Matches) == 0 {
		fmt.Fprintf(&b, "No combinations found that sum to ~%s (tol=%s) in %.2fs\n",
			rep.Summary.Target, rep.Summary.Tolerance, rep.Summary.Elapsed)
	} else {
		fmt.Fprintf(&b, "Found %d matches in %.2fs:\n", len(rep.Matches), rep.Summary.Elapsed)
		for _, m := range rep.Matches {
			b.WriteString(MatchLine(m))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nMatches: %d  Status: %s  Truncated: %t  Candidates: %s  Explored: %s  Elapsed: %s\n",
		rep.Summary.Matches,
		rep.Summary.Status,
		rep.Summary.Truncated,
		humanize.Comma(int64(rep.Summary.Candidates)),
		humanize.Comma(rep.Summary.Explored),
		r.Elapsed.Round(time.Microsecond),
	)

	_, err := io.WriteString(w, b.String())
	return err
}

// MatchLine renders a match as "[(row, value), ...] => total"
func MatchLine(m Match) string {
	parts := make([]string, len(m.Items))
	for i, item := range m.Items {
		if item.Label != "" {
			parts[i] = fmt.Sprintf("(%s %q, %s)", item.OriginID, item.Label, item.Value)
		} else {
			parts[i] = fmt.Sprintf("(%s, %s)", item.OriginID, item.Value)
		}
	}
	line := fmt.Sprintf("[%s] => %s", strings.Join(parts, ", "), m.Total)
	if m.Negated {
		line += fmt.Sprintf(" (negated target %s)", m.Target)
	}
	return line
}
