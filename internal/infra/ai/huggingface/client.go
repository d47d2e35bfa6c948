package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
)

// DefaultBaseURL is the serverless inference endpoint; models are addressed
// as {base}/models/{model}.
const DefaultBaseURL = "https://router.huggingface.co/hf-inference"

const providerName = "huggingface"

// Client talks to the Hugging Face inference API.
type Client struct {
	Token   string
	BaseURL string
	client  *http.Client
}

func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		Token:   token,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type textGenerationBody struct {
	Inputs     string                  `json:"inputs"`
	Parameters ai.GenerationParameters `json:"parameters"`
}

type visualQABody struct {
	Inputs ai.VisualQAInputs `json:"inputs"`
}

func (c *Client) TextGeneration(ctx context.Context, req ai.TextGenerationRequest) (ai.TextGenerationResponse, error) {
	body, err := c.post(ctx, req.Model, textGenerationBody{Inputs: req.Inputs, Parameters: req.Parameters})
	if err != nil {
		return ai.TextGenerationResponse{}, fmt.Errorf("text generation: %w", err)
	}

	var out []ai.TextGenerationResponse
	if err := decodeOneOrMany(body, &out); err != nil {
		return ai.TextGenerationResponse{}, fmt.Errorf("failed to parse HF response: %w", err)
	}
	if len(out) == 0 {
		return ai.TextGenerationResponse{}, nil
	}
	return out[0], nil
}

func (c *Client) VisualQuestionAnswering(ctx context.Context, req ai.VisualQARequest) (ai.VisualQAResponse, error) {
	body, err := c.post(ctx, req.Model, visualQABody{Inputs: req.Inputs})
	if err != nil {
		return ai.VisualQAResponse{}, fmt.Errorf("visual question answering: %w", err)
	}

	// answers come back ranked by score
	var out []ai.VisualQAResponse
	if err := decodeOneOrMany(body, &out); err != nil {
		return ai.VisualQAResponse{}, fmt.Errorf("failed to parse HF response: %w", err)
	}
	if len(out) == 0 {
		return ai.VisualQAResponse{}, nil
	}
	return out[0], nil
}

func (c *Client) post(ctx context.Context, model string, payload any) ([]byte, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.BaseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HF request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ai.APIError{Provider: providerName, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// decodeOneOrMany accepts either a JSON array or a single object.
func decodeOneOrMany[T any](body []byte, out *[]T) error {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var one T
		if err := json.Unmarshal(body, &one); err != nil {
			return err
		}
		*out = []T{one}
		return nil
	}
	return json.Unmarshal(body, out)
}

// errorMessage extracts {"error": "..."} from an error body, falling back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != nil {
		switch v := e.Error.(type) {
		case string:
			return v
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(body))
}
