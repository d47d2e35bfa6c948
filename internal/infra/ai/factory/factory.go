package factory

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/datalens-ai/internal/config"
	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
	"github.com/bryanwahyu/datalens-ai/internal/infra/ai/gemini"
	"github.com/bryanwahyu/datalens-ai/internal/infra/ai/huggingface"
	"github.com/bryanwahyu/datalens-ai/internal/infra/ai/openai"
)

// NewBackend creates the inference backend named in cfg.Inference.Provider.
// The returned closer releases provider resources and is never nil.
func NewBackend(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (ai.Backend, io.Closer, error) {
	inf := cfg.Inference
	if inf.APIKey == "" {
		log.WithField("provider", inf.Provider).Warn("no inference API key configured, backend calls will be rejected")
	}

	switch inf.Provider {
	case config.ProviderHuggingFace:
		log.WithFields(logrus.Fields{"provider": inf.Provider, "model": inf.Model, "vision_model": inf.VisionModel}).Info("using Hugging Face inference backend")
		return huggingface.NewClient(inf.APIKey, inf.BaseURL, cfg.InferenceTimeout()), nopCloser{}, nil

	case config.ProviderOpenAI:
		log.WithFields(logrus.Fields{"provider": inf.Provider, "model": inf.Model, "base_url": inf.BaseURL}).Info("using OpenAI-compatible backend")
		return openai.NewClient(inf.APIKey, inf.BaseURL, cfg.InferenceTimeout()), nopCloser{}, nil

	case config.ProviderGemini:
		cli, err := gemini.NewClient(ctx, inf.APIKey)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(logrus.Fields{"provider": inf.Provider, "model": inf.Model}).Info("using Gemini backend")
		return cli, cli, nil

	default:
		return nil, nil, fmt.Errorf("unsupported inference provider: %s (supported: huggingface, openai, gemini)", inf.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
