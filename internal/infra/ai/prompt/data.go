package prompt

import "fmt"

// DataQuality asks for a JSON data-quality report over a preview of the dataset.
func DataQuality(preview, filename, fileType string) string {
	return fmt.Sprintf(`You are a senior data quality analyst. Review the sample of the uploaded file below.

File name: %s
File type: %s
Sample records (JSON):
%s

Identify:
- data quality issues (missing values, inconsistent formats, duplicates, outliers)
- cleaning recommendations
- an analysis of every column (inferred type, issues, suggestions)
- columns containing emails, phone numbers, dates or postal addresses

You must produce one valid JSON object only (no markdown, no commentary) following this schema:
{
  "quality_issues": ["<string>"],
  "cleaning_recommendations": ["<string>"],
  "column_analysis": {
    "<column name>": {"type": "<string>", "issues": ["<string>"], "suggestions": ["<string>"]}
  },
  "patterns_detected": {
    "emails": ["<column name>"],
    "phones": ["<column name>"],
    "dates": ["<column name>"],
    "addresses": ["<column name>"]
  }
}

Return only valid JSON.`, filename, fileType, preview)
}

// Chat wraps a user question with the dataset summary.
func Chat(dataSummary, userMessage string) string {
	return fmt.Sprintf(`You are a helpful data assistant. The user has uploaded a dataset and is asking questions about it.

Dataset information:
%s

User question: %s

Answer using the dataset above. Where useful, give insights, recommendations and concrete examples from the data.
Keep the answer concise and conversational.`, dataSummary, userMessage)
}
