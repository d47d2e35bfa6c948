package ai

import "context"

// Backend is the hosted inference API behind the service.
type Backend interface {
	TextGeneration(ctx context.Context, req TextGenerationRequest) (TextGenerationResponse, error)
	VisualQuestionAnswering(ctx context.Context, req VisualQARequest) (VisualQAResponse, error)
}

// ImageProcessor prepares an uploaded image before it is sent to the model.
// It returns the new bytes and their MIME type.
type ImageProcessor interface {
	Process(data []byte) ([]byte, string, error)
}

// ImageArchive keeps a copy of uploaded images and returns where it was stored.
type ImageArchive interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
