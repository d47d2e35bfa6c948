package dataset

import (
	"regexp"

	"github.com/araddon/dateparse"
)

// sampleSize caps how many non-empty values per column are checked.
const sampleSize = 10

// DefaultRecommendations are the cleaning steps suggested by FallbackAnalysis.
var DefaultRecommendations = []string{"Remove empty rows", "Trim whitespace", "Handle missing values"}

var (
	emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)
	// Matches "(555) 123-4567" and "+62 812 3456 7890", but plain integers
	// and ISO dates of 7-15 chars match as well.
	phoneRe   = regexp.MustCompile(`^\+?[\d\s\-().]{7,15}$`)
	addressRe = regexp.MustCompile(`(?i)^\d+[a-z]?\s+([a-z0-9.'-]+\s+)+(street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|place|pl|jalan|jl)\.?(\s*,.*)?$`)
)

// detector reports whether a sampled value has a given shape.
type detector struct {
	target func(p *Patterns) *StringList
	match  func(s string) bool
}

var detectors = []detector{
	{func(p *Patterns) *StringList { return &p.Emails }, emailRe.MatchString},
	{func(p *Patterns) *StringList { return &p.Phones }, phoneRe.MatchString},
	{func(p *Patterns) *StringList { return &p.Dates }, IsDate},
	{func(p *Patterns) *StringList { return &p.Addresses }, addressRe.MatchString},
}

// IsDate reports whether s parses as a date in any common layout.
func IsDate(s string) (ok bool) {
	// dateparse can panic on some malformed inputs.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := dateparse.ParseAny(s)
	return err == nil
}

// FallbackAnalysis builds a data-quality report locally, without the model.
// It returns nil for an empty dataset.
func FallbackAnalysis(data Dataset) *ColumnAnalysis {
	if len(data) == 0 {
		return nil
	}
	a := &ColumnAnalysis{
		QualityIssues:           StringList{},
		CleaningRecommendations: append(StringList{}, DefaultRecommendations...),
		ColumnAnalysis:          map[string]ColumnReport{},
		PatternsDetected: Patterns{
			Emails:    StringList{},
			Phones:    StringList{},
			Dates:     StringList{},
			Addresses: StringList{},
		},
	}

	for _, col := range data.Columns() {
		samples := SampleColumn(data, col, sampleSize)
		for _, d := range detectors {
			if anyMatch(samples, d.match) {
				list := d.target(&a.PatternsDetected)
				*list = append(*list, col)
			}
		}
	}
	return a
}

// SampleColumn returns up to n non-empty values of a column, as text, in row order.
func SampleColumn(data Dataset, column string, n int) []string {
	out := make([]string, 0, n)
	for _, r := range data {
		if len(out) >= n {
			break
		}
		v, ok := r.Get(column)
		if !ok || v.IsEmpty() {
			continue
		}
		out = append(out, v.Text())
	}
	return out
}

func anyMatch(values []string, match func(string) bool) bool {
	for _, v := range values {
		if match(v) {
			return true
		}
	}
	return false
}
