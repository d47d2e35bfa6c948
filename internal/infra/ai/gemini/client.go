package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
)

const providerName = "gemini"

// Client serves the backend contract with Google Gemini models.
type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: cli}, nil
}

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) TextGeneration(ctx context.Context, req ai.TextGenerationRequest) (ai.TextGenerationResponse, error) {
	model := c.model(req.Model, req.Parameters)
	resp, err := model.GenerateContent(ctx, genai.Text(req.Inputs))
	if err != nil {
		return ai.TextGenerationResponse{}, fmt.Errorf("text generation: %w", mapError(err))
	}
	return ai.TextGenerationResponse{GeneratedText: responseText(resp)}, nil
}

func (c *Client) VisualQuestionAnswering(ctx context.Context, req ai.VisualQARequest) (ai.VisualQAResponse, error) {
	data, err := base64.StdEncoding.DecodeString(ai.StripDataURLPrefix(req.Inputs.Image))
	if err != nil {
		return ai.VisualQAResponse{}, fmt.Errorf("decode image: %w", err)
	}

	model := c.model(req.Model, ai.GenerationParameters{MaxNewTokens: 8192})
	resp, err := model.GenerateContent(ctx,
		genai.Text(req.Inputs.Question),
		genai.Blob{MIMEType: ai.SniffMIME(data), Data: data},
	)
	if err != nil {
		return ai.VisualQAResponse{}, fmt.Errorf("visual question answering: %w", mapError(err))
	}
	return ai.VisualQAResponse{Answer: responseText(resp)}, nil
}

// model returns a fresh GenerativeModel; models carry mutable config, so one
// is built per call.
func (c *Client) model(name string, p ai.GenerationParameters) *genai.GenerativeModel {
	m := c.client.GenerativeModel(name)
	if p.MaxNewTokens > 0 {
		m.SetMaxOutputTokens(int32(p.MaxNewTokens))
	}
	if p.Temperature > 0 {
		m.SetTemperature(float32(p.Temperature))
	}
	if p.TopP > 0 {
		m.SetTopP(float32(p.TopP))
	}
	return m
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Code)
		}
		return &ai.APIError{Provider: providerName, StatusCode: apiErr.Code, Message: msg}
	}
	return err
}
