package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// StringList accepts either a JSON array of strings or a single string.
// Models are not consistent about which one they return.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// ColumnReport is the per-column part of a data-quality report.
type ColumnReport struct {
	Type        string     `json:"type"`
	Issues      StringList `json:"issues"`
	Suggestions StringList `json:"suggestions"`
}

// Patterns lists the columns in which a known value shape was found.
type Patterns struct {
	Emails    StringList `json:"emails"`
	Phones    StringList `json:"phones"`
	Dates     StringList `json:"dates"`
	Addresses StringList `json:"addresses"`
}

// ColumnAnalysis is the data-quality report returned for an uploaded dataset,
// either produced by the model or by FallbackAnalysis.
type ColumnAnalysis struct {
	QualityIssues           StringList              `json:"quality_issues"`
	CleaningRecommendations StringList              `json:"cleaning_recommendations"`
	ColumnAnalysis          map[string]ColumnReport `json:"column_analysis"`
	PatternsDetected        Patterns                `json:"patterns_detected"`
}

// normalize replaces missing collections with empty ones so callers can range
// over every field.
func (a *ColumnAnalysis) normalize() {
	if a.QualityIssues == nil {
		a.QualityIssues = StringList{}
	}
	if a.CleaningRecommendations == nil {
		a.CleaningRecommendations = StringList{}
	}
	if a.ColumnAnalysis == nil {
		a.ColumnAnalysis = map[string]ColumnReport{}
	}
	for name, col := range a.ColumnAnalysis {
		if col.Issues == nil {
			col.Issues = StringList{}
		}
		if col.Suggestions == nil {
			col.Suggestions = StringList{}
		}
		a.ColumnAnalysis[name] = col
	}
	p := &a.PatternsDetected
	for _, l := range []*StringList{&p.Emails, &p.Phones, &p.Dates, &p.Addresses} {
		if *l == nil {
			*l = StringList{}
		}
	}
}

// Source tells where a DataAnalysis report came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// DataAnalysis is the result of analysing a dataset. Report is nil when there
// was nothing to analyse; it then serialises as an empty object.
type DataAnalysis struct {
	Source Source
	Report *ColumnAnalysis
}

func (d DataAnalysis) MarshalJSON() ([]byte, error) {
	if d.Report == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Report)
}

// ErrNotJSONObject is returned by ParseAnalysis when the model output is not a
// JSON object.
var ErrNotJSONObject = errors.New("model output is not a JSON object")

// ParseAnalysis decodes a model-generated report. Markdown code fences around
// the payload are tolerated; anything else that is not a JSON object fails.
func ParseAnalysis(text string) (*ColumnAnalysis, error) {
	s := StripCodeFences(text)
	if !strings.HasPrefix(s, "{") {
		return nil, ErrNotJSONObject
	}
	var a ColumnAnalysis
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, err
	}
	a.normalize()
	return &a, nil
}

// StripCodeFences removes a surrounding ```json ... ``` block, if any.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
