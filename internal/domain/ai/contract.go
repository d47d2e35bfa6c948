package ai

// GenerationParameters mirrors the text-generation parameters of the
// inference API.
type GenerationParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type TextGenerationRequest struct {
	Model      string               `json:"model"`
	Inputs     string               `json:"inputs"`
	Parameters GenerationParameters `json:"parameters"`
}

type TextGenerationResponse struct {
	GeneratedText string `json:"generated_text"`
}

type VisualQAInputs struct {
	Question string `json:"question"`
	// Image is base64 without a data-URL prefix.
	Image string `json:"image"`
}

type VisualQARequest struct {
	Model  string         `json:"model"`
	Inputs VisualQAInputs `json:"inputs"`
}

type VisualQAResponse struct {
	Answer string `json:"answer"`
}
