package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
)

func newTestServer(t *testing.T, status int, reply string, got *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
}

const completion = `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"cleaned text"},"finish_reason":"stop"}]}`

func TestTextGeneration(t *testing.T) {
	var got map[string]any
	srv := newTestServer(t, http.StatusOK, completion, &got)
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, time.Second)
	resp, err := c.TextGeneration(context.Background(), ai.TextGenerationRequest{
		Model:      "gpt-4o-mini",
		Inputs:     "fix this",
		Parameters: ai.GenerationParameters{MaxNewTokens: 1500, Temperature: 0.2, TopP: 0.8},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.GeneratedText != "cleaned text" {
		t.Fatalf("expected cleaned text, got %q", resp.GeneratedText)
	}
	if got["model"] != "gpt-4o-mini" || got["max_tokens"] != float64(1500) {
		t.Fatalf("unexpected request %v", got)
	}
	if tp, _ := got["top_p"].(float64); tp < 0.79 || tp > 0.81 {
		t.Fatalf("expected top_p 0.8, got %v", got["top_p"])
	}
}

func TestReasoningModelUsesMaxCompletionTokens(t *testing.T) {
	var got map[string]any
	srv := newTestServer(t, http.StatusOK, completion, &got)
	defer srv.Close()

	_, err := NewClient("sk-test", srv.URL, time.Second).TextGeneration(context.Background(), ai.TextGenerationRequest{
		Model:      "o3-mini",
		Parameters: ai.GenerationParameters{MaxNewTokens: 1000, Temperature: 0.7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["max_completion_tokens"] != float64(1000) {
		t.Fatalf("expected max_completion_tokens, got %v", got)
	}
	if _, ok := got["max_tokens"]; ok {
		t.Fatal("max_tokens must not be sent to reasoning models")
	}
}

func TestVisualQuestionAnsweringSendsDataURL(t *testing.T) {
	var got map[string]any
	srv := newTestServer(t, http.StatusOK, completion, &got)
	defer srv.Close()

	resp, err := NewClient("sk-test", srv.URL, time.Second).VisualQuestionAnswering(context.Background(), ai.VisualQARequest{
		Model:  "gpt-4o",
		Inputs: ai.VisualQAInputs{Question: "read it", Image: "AAAA"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != "cleaned text" {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}

	msgs := got["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	if img["url"] != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("unexpected image url %v", img["url"])
	}
}

func TestVisualQuestionAnsweringKeepsImageType(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	gif := base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00"))

	cases := []struct {
		name  string
		image string
		want  string
	}{
		{"png", png, "data:image/png;base64," + png},
		{"gif", gif, "data:image/gif;base64," + gif},
		{"data url untouched", "data:image/webp;base64,UklGRg==", "data:image/webp;base64,UklGRg=="},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]any
			srv := newTestServer(t, http.StatusOK, completion, &got)
			defer srv.Close()

			_, err := NewClient("sk-test", srv.URL, time.Second).VisualQuestionAnswering(context.Background(), ai.VisualQARequest{
				Model:  "gpt-4o",
				Inputs: ai.VisualQAInputs{Question: "read it", Image: tc.image},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			msgs := got["messages"].([]any)
			parts := msgs[0].(map[string]any)["content"].([]any)
			img := parts[1].(map[string]any)["image_url"].(map[string]any)
			if img["url"] != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, img["url"])
			}
		})
	}
}

func TestVisualQuestionAnsweringRejectsBadBase64(t *testing.T) {
	_, err := NewClient("sk-test", "http://127.0.0.1:1", time.Second).VisualQuestionAnswering(context.Background(), ai.VisualQARequest{
		Model:  "gpt-4o",
		Inputs: ai.VisualQAInputs{Question: "read it", Image: "not base64!"},
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestQuotaError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota","type":"insufficient_quota"}}`, nil)
	defer srv.Close()

	_, err := NewClient("sk-test", srv.URL, time.Second).TextGeneration(context.Background(), ai.TextGenerationRequest{Model: "gpt-4o-mini"})
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}
