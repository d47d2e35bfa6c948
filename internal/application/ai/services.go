package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/datalens-ai/internal/application"
	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
	"github.com/bryanwahyu/datalens-ai/internal/domain/dataset"
	"github.com/bryanwahyu/datalens-ai/internal/domain/interaction"
	"github.com/bryanwahyu/datalens-ai/internal/infra/ai/prompt"
)

// Error messages placed in Response.Error.
const (
	MsgEnhanceFailed = "Failed to enhance OCR text"
	MsgAnalyzeFailed = "Failed to analyze data"
	MsgChatFailed    = "Failed to generate response"
	MsgImageFailed   = "Failed to analyze image"
)

// Chat replies used when the model gives nothing usable.
const (
	ChatEmptyReply = "I'm sorry, I couldn't generate a response. Could you please rephrase your question?"
	ChatErrorReply = "I'm experiencing some technical difficulties right now. Please try again in a moment."
)

var (
	enhanceParams = ai.GenerationParameters{MaxNewTokens: 2000, Temperature: 0.3, TopP: 0.9}
	analyzeParams = ai.GenerationParameters{MaxNewTokens: 1500, Temperature: 0.2, TopP: 0.8}
	chatParams    = ai.GenerationParameters{MaxNewTokens: 1000, Temperature: 0.7, TopP: 0.9}
)

// Service fronts the inference backend for OCR cleanup, data-quality
// analysis, dataset chat and image OCR. Operations never return an error:
// failures come back as an unsuccessful Response carrying a fallback.
//
// Backend and Model are required; the rest is optional. A Service holds no
// per-call state and is safe for concurrent use.
type Service struct {
	Backend     ai.Backend
	Model       string
	VisionModel string

	Images   ai.ImageProcessor
	Archive  ai.ImageArchive
	Recorder interaction.Repository
	Clock    application.Clock
	Logger   logrus.FieldLogger
}

func NewService(backend ai.Backend, model, visionModel string) *Service {
	return &Service{Backend: backend, Model: model, VisionModel: visionModel}
}

// EnhanceOCRText asks the model to clean up raw OCR output. On failure the
// original text is returned as data.
func (s *Service) EnhanceOCRText(ctx context.Context, extractedText, imageContext string) ai.Response[string] {
	start := s.now()
	out, err := s.Backend.TextGeneration(ctx, ai.TextGenerationRequest{
		Model:      s.Model,
		Inputs:     prompt.EnhanceOCR(extractedText, imageContext),
		Parameters: enhanceParams,
	})

	var resp ai.Response[string]
	if err != nil {
		s.logger().WithError(err).WithField("operation", interaction.OpEnhanceOCR).Error("OCR enhancement failed")
		resp = ai.Failed(MsgEnhanceFailed, extractedText)
	} else if text := strings.TrimSpace(out.GeneratedText); text != "" {
		resp = ai.OK(text)
	} else {
		resp = ai.OK(extractedText)
	}

	s.record(ctx, start, recordInput{op: interaction.OpEnhanceOCR, input: extractedText}, resp.Success, resp.Error, resp.Data)
	return resp
}

// CleanAndStructureData asks the model for a data-quality report on the first
// records of data. When the call fails or the output is not a JSON object,
// the locally computed FallbackAnalysis is returned instead.
func (s *Service) CleanAndStructureData(ctx context.Context, data dataset.Dataset, filename, fileType string) ai.Response[dataset.DataAnalysis] {
	start := s.now()
	log := s.logger().WithFields(logrus.Fields{"operation": interaction.OpAnalyzeData, "filename": filename, "rows": len(data)})

	out, err := s.Backend.TextGeneration(ctx, ai.TextGenerationRequest{
		Model:      s.Model,
		Inputs:     prompt.DataQuality(dataset.Pretty(data.Head(dataset.PreviewRows)), filename, fileType),
		Parameters: analyzeParams,
	})

	fallback := dataset.DataAnalysis{Source: dataset.SourceFallback, Report: dataset.FallbackAnalysis(data)}
	var resp ai.Response[dataset.DataAnalysis]
	if err != nil {
		log.WithError(err).Error("data analysis failed")
		resp = ai.Failed(MsgAnalyzeFailed, fallback)
	} else if report, perr := dataset.ParseAnalysis(out.GeneratedText); perr != nil {
		log.WithError(perr).Warn("model returned invalid JSON, using fallback analysis")
		resp = ai.OK(fallback)
	} else {
		resp = ai.OK(dataset.DataAnalysis{Source: dataset.SourceModel, Report: report})
	}

	s.record(ctx, start, recordInput{
		op:     interaction.OpAnalyzeData,
		input:  fmt.Sprintf("%s (%s, %d rows)", filename, fileType, len(data)),
		source: string(resp.Data.Source),
	}, resp.Success, resp.Error, resp.Data)
	return resp
}

// GenerateChatResponse answers a question about the uploaded dataset.
func (s *Service) GenerateChatResponse(ctx context.Context, userMessage string, data dataset.Dataset, filename string) ai.Response[string] {
	start := s.now()
	out, err := s.Backend.TextGeneration(ctx, ai.TextGenerationRequest{
		Model:      s.Model,
		Inputs:     prompt.Chat(dataset.CreateDataSummary(data, filename), userMessage),
		Parameters: chatParams,
	})

	var resp ai.Response[string]
	if err != nil {
		s.logger().WithError(err).WithFields(logrus.Fields{"operation": interaction.OpChat, "filename": filename}).Error("chat response failed")
		resp = ai.Failed(MsgChatFailed, ChatErrorReply)
	} else if text := strings.TrimSpace(out.GeneratedText); text != "" {
		resp = ai.OK(text)
	} else {
		resp = ai.OK(ChatEmptyReply)
	}

	s.record(ctx, start, recordInput{op: interaction.OpChat, input: userMessage}, resp.Success, resp.Error, resp.Data)
	return resp
}

// AnalyzeImageForOCR sends the image to the vision model and returns the text
// it read, or "" on failure.
func (s *Service) AnalyzeImageForOCR(ctx context.Context, img ai.Image) ai.Response[string] {
	start := s.now()
	log := s.logger().WithFields(logrus.Fields{"operation": interaction.OpImageOCR, "image": img.Name()})
	rec := recordInput{op: interaction.OpImageOCR, input: img.Name()}

	fail := func(err error) ai.Response[string] {
		log.WithError(err).Error("image analysis failed")
		resp := ai.Failed(MsgImageFailed, "")
		s.record(ctx, start, rec, false, resp.Error, resp.Data)
		return resp
	}

	data, err := ai.ReadImage(ctx, img)
	if err != nil {
		return fail(err)
	}
	mime := ai.SniffMIME(data)

	if s.Images != nil {
		if processed, pmime, perr := s.Images.Process(data); perr != nil {
			log.WithError(perr).Warn("image preprocessing failed, using original")
		} else {
			data, mime = processed, pmime
		}
	}

	if s.Archive != nil {
		key := archiveKey(interaction.TenantFrom(ctx), s.now(), imageExt(mime, img.Name()))
		if url, aerr := s.Archive.Archive(ctx, key, data, mime); aerr != nil {
			log.WithError(aerr).Warn("image archive failed")
		} else {
			rec.imageURL = url
		}
	}

	out, err := s.Backend.VisualQuestionAnswering(ctx, ai.VisualQARequest{
		Model: s.visionModel(),
		Inputs: ai.VisualQAInputs{
			Question: prompt.ImageOCR(),
			Image:    ai.StripDataURLPrefix(ai.MakeDataURL(mime, data)),
		},
	})
	if err != nil {
		return fail(err)
	}

	resp := ai.OK(out.Answer)
	s.record(ctx, start, rec, true, "", resp.Data)
	return resp
}

// FileToBase64 reads an image and returns its content as bare base64.
func FileToBase64(ctx context.Context, img ai.Image) (string, error) {
	data, err := ai.ReadImage(ctx, img)
	if err != nil {
		return "", err
	}
	return ai.StripDataURLPrefix(ai.MakeDataURL("", data)), nil
}

// ListInteractions pages through the recorded interactions of a tenant.
func (s *Service) ListInteractions(ctx context.Context, tenant string, page, pageSize int) ([]*interaction.Interaction, error) {
	if s.Recorder == nil {
		return nil, ErrRecorderDisabled
	}
	return s.Recorder.Paginate(ctx, tenant, page, pageSize)
}

type recordInput struct {
	op       interaction.Operation
	input    string
	source   string
	imageURL string
}

// record stores the outcome of a call. Failures are only logged.
func (s *Service) record(ctx context.Context, start time.Time, in recordInput, success bool, errMsg string, data any) {
	if s.Recorder == nil {
		return
	}
	result, err := json.Marshal(data)
	if err != nil {
		result = []byte("{}")
	}
	now := s.now()
	it := &interaction.Interaction{
		ID:         interaction.ID(uuid.NewString()),
		TenantID:   interaction.TenantFrom(ctx),
		Operation:  in.op,
		Success:    success,
		Error:      errMsg,
		Source:     in.source,
		Input:      interaction.Digest(in.input),
		Result:     string(result),
		ImageURL:   in.imageURL,
		DurationMS: now.Sub(start).Milliseconds(),
		CreatedAt:  now,
	}
	// the request may already be cancelled; the audit row should still land
	if err := s.Recorder.Save(context.WithoutCancel(ctx), it); err != nil {
		s.logger().WithError(err).WithField("operation", in.op).Warn("failed to record interaction")
	}
}

func archiveKey(tenant string, t time.Time, ext string) string {
	if tenant == "" {
		tenant = "default"
	}
	return fmt.Sprintf("%s/%s/%s%s", tenant, t.UTC().Format("2006/01/02"), uuid.NewString(), ext)
}

var mimeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

func imageExt(mime, name string) string {
	if ext, ok := mimeExt[mime]; ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(name))
}

func (s *Service) visionModel() string {
	if s.VisionModel != "" {
		return s.VisionModel
	}
	return s.Model
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
