package compare

import (
	"sort"
	"strings"

	"github.com/ternarybob/lexuz/internal/models"
)

// View selects the comparison policy. The inline diff view compares text
// normalized to single spaces; the comparative table ignores all spacing
// differences. Classification and highlighting share the same policy so a
// "changed" row always has a visible diff.
type View int

const (
	ViewInline View = iota
	ViewTable
)

func (v View) mode() Mode {
	if v == ViewTable {
		return ModeCompact
	}
	return ModeSpaced
}

// Align produces one ComparisonRow per section key present on either side,
// sorted lexicographically by key. Duplicate keys within one side resolve
// last-write-wins. Row text carries the original (trimmed) content; the
// status is classified on the view's normalized, case-folded form.
func Align(before, after []models.Section, view View) []models.ComparisonRow {
	b := sectionMap(before)
	a := sectionMap(after)

	keys := make([]string, 0, len(b)+len(a))
	seen := make(map[string]bool, len(b)+len(a))
	for _, s := range before {
		if !seen[s.Key] {
			seen[s.Key] = true
			keys = append(keys, s.Key)
		}
	}
	for _, s := range after {
		if !seen[s.Key] {
			seen[s.Key] = true
			keys = append(keys, s.Key)
		}
	}
	sort.Strings(keys)

	mode := view.mode()
	rows := make([]models.ComparisonRow, 0, len(keys))
	for _, key := range keys {
		bv := strings.TrimSpace(b[key])
		av := strings.TrimSpace(a[key])
		bn := Normalize(bv, mode)
		an := Normalize(av, mode)

		status := models.RowUnchanged
		switch {
		case bn == "" && an != "":
			status = models.RowAdded
		case bn != "" && an == "":
			status = models.RowRemoved
		case Fold(bn) != Fold(an):
			status = models.RowChanged
		}

		rows = append(rows, models.ComparisonRow{
			Section: key,
			Status:  status,
			Before:  bv,
			After:   av,
		})
	}
	return rows
}

// Summarize counts rows per status. Callers compute this once over the
// full row set; display filters must not change the counts.
func Summarize(rows []models.ComparisonRow) models.ComparisonSummary {
	var s models.ComparisonSummary
	for _, r := range rows {
		switch r.Status {
		case models.RowUnchanged:
			s.Unchanged++
		case models.RowAdded:
			s.Added++
		case models.RowRemoved:
			s.Removed++
		case models.RowChanged:
			s.Changed++
		}
	}
	return s
}

// Changed filters out unchanged rows for the "show only changes" toggle
func Changed(rows []models.ComparisonRow) []models.ComparisonRow {
	out := make([]models.ComparisonRow, 0, len(rows))
	for _, r := range rows {
		if r.Status != models.RowUnchanged {
			out = append(out, r)
		}
	}
	return out
}

func sectionMap(sections []models.Section) map[string]string {
	m := make(map[string]string, len(sections))
	for _, s := range sections {
		m[s.Key] = s.Text
	}
	return m
}
