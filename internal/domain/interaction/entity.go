package interaction

import "time"

// ID identifier type
type ID string

// Operation names a service call recorded in the audit log.
type Operation string

const (
	OpEnhanceOCR  Operation = "enhance_ocr"
	OpAnalyzeData Operation = "analyze_data"
	OpChat        Operation = "chat"
	OpImageOCR    Operation = "image_ocr"
)

// Interaction is one service call stored for auditing and retrieval.
type Interaction struct {
	ID         ID        `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Operation  Operation `json:"operation"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Source     string    `json:"source,omitempty"` // model | fallback, data analysis only
	Input      string    `json:"input"`
	Result     string    `json:"result"` // JSON of the response data
	ImageURL   string    `json:"image_url,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// MaxInputLen bounds the input digest kept per interaction.
const MaxInputLen = 200

// Digest shortens s to MaxInputLen runes.
func Digest(s string) string {
	r := []rune(s)
	if len(r) <= MaxInputLen {
		return s
	}
	return string(r[:MaxInputLen]) + "..."
}
