package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
)

const providerName = "openai"

// Client serves the backend contract through an OpenAI-compatible chat
// completions endpoint.
type Client struct {
	*openai.Client
}

// NewClient builds a client; baseURL may point at any OpenAI-compatible API
// (for example the Hugging Face router at https://router.huggingface.co/v1).
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Client{Client: openai.NewClientWithConfig(cfg)}
}

func (c *Client) TextGeneration(ctx context.Context, req ai.TextGenerationRequest) (ai.TextGenerationResponse, error) {
	chat := newChatRequest(req.Model, req.Parameters, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Inputs,
	})

	text, err := c.complete(ctx, chat)
	if err != nil {
		return ai.TextGenerationResponse{}, fmt.Errorf("text generation: %w", err)
	}
	return ai.TextGenerationResponse{GeneratedText: text}, nil
}

func (c *Client) VisualQuestionAnswering(ctx context.Context, req ai.VisualQARequest) (ai.VisualQAResponse, error) {
	// chat APIs expect a data URL, the contract carries bare base64
	image := req.Inputs.Image
	if !strings.HasPrefix(image, "data:") {
		data, err := base64.StdEncoding.DecodeString(image)
		if err != nil {
			return ai.VisualQAResponse{}, fmt.Errorf("decode image: %w", err)
		}
		image = ai.MakeDataURL(imageMIME(data), data)
	}
	chat := newChatRequest(req.Model, ai.GenerationParameters{MaxNewTokens: maxVisionTokens}, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Inputs.Question},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    image,
				Detail: openai.ImageURLDetailHigh,
			}},
		},
	})

	text, err := c.complete(ctx, chat)
	if err != nil {
		return ai.VisualQAResponse{}, fmt.Errorf("visual question answering: %w", err)
	}
	return ai.VisualQAResponse{Answer: text}, nil
}

const maxVisionTokens = 2048

// imageMIME sniffs the upload type; unrecognised bytes are sent as JPEG.
func imageMIME(data []byte) string {
	if mime := ai.SniffMIME(data); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/jpeg"
}

func newChatRequest(model string, p ai.GenerationParameters, msg openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: []openai.ChatCompletionMessage{msg},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens,
	// they also reject sampling parameters
	if isReasoningModel(model) {
		req.MaxCompletionTokens = p.MaxNewTokens
		return req
	}
	req.MaxTokens = p.MaxNewTokens
	req.Temperature = float32(p.Temperature)
	req.TopP = float32(p.TopP)
	return req
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ai.APIError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ai.APIError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
