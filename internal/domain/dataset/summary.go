package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// PreviewRows is how many records are shown to the model for analysis.
	PreviewRows = 10
	// SummaryRows is how many records are embedded in a chat summary.
	SummaryRows = 3
)

// NoDataSummary is what CreateDataSummary returns for an empty dataset.
const NoDataSummary = "No data available"

// CreateDataSummary renders a short textual description of the dataset used
// as chat context.
func CreateDataSummary(data Dataset, filename string) string {
	if len(data) == 0 {
		return NoDataSummary
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", filename)
	fmt.Fprintf(&b, "Rows: %d\n", len(data))
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(data.Columns(), ", "))
	b.WriteString("Sample data:\n")
	b.WriteString(Pretty(data.Head(SummaryRows)))
	return b.String()
}

// Pretty renders records as indented JSON.
func Pretty(data Dataset) string {
	if data == nil {
		data = Dataset{}
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}
