package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appai "github.com/bryanwahyu/datalens-ai/internal/application/ai"
	"github.com/bryanwahyu/datalens-ai/internal/domain/ai"
	"github.com/bryanwahyu/datalens-ai/internal/domain/dataset"
	"github.com/bryanwahyu/datalens-ai/internal/domain/interaction"
	"github.com/bryanwahyu/datalens-ai/internal/middleware"
)

// Options configures the HTTP surface.
type Options struct {
	APIKeys        map[string]string
	AllowedOrigins []string
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
	Logger         logrus.FieldLogger
}

type Router struct {
	aiSvc     *appai.Service
	maxUpload int64
	log       logrus.FieldLogger
}

func NewRouter(aiSvc *appai.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{aiSvc: aiSvc, maxUpload: opts.MaxUploadBytes, log: opts.Logger}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(opts.Logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.Use(middleware.RequireValidTenant)
		rt.Use(withTenant)

		rt.Post("/ocr/enhance", r.wrap(r.handleEnhanceOCR))
		rt.Post("/ocr/image", r.wrap(r.handleImageOCR))
		rt.Post("/data/analyze", r.wrap(r.handleAnalyzeData))
		rt.Post("/chat", r.wrap(r.handleChat))
		rt.Get("/interactions", r.wrap(r.handleInteractions))
	})

	return mux
}

// withTenant hands the path tenant to the service for interaction records.
func withTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := interaction.WithTenant(req.Context(), chi.URLParam(req, "tenant"))
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks client input errors.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func invalid(format string, args ...any) error {
	return badRequest{fmt.Errorf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			case errors.As(err, &br):
				http.Error(w, br.Error(), http.StatusBadRequest)
			case errors.Is(err, appai.ErrRecorderDisabled):
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				r.log.WithError(err).WithField("path", req.URL.Path).Error("handler error")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func (r *Router) decode(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return invalid("invalid JSON body: %v", err)
	}
	return nil
}

// POST /v1/{tenant}/ocr/enhance
// Body: {"extracted_text": "...", "image_context": "..."}
func (r *Router) handleEnhanceOCR(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ExtractedText string `json:"extracted_text"`
		ImageContext  string `json:"image_context"`
	}
	if err := r.decode(w, req, &body); err != nil {
		return err
	}
	if body.ExtractedText == "" {
		return invalid("extracted_text is required")
	}

	resp := r.aiSvc.EnhanceOCRText(req.Context(), body.ExtractedText, middleware.SanitizeString(body.ImageContext))
	middleware.RecordOperation(string(interaction.OpEnhanceOCR), resp.Success, false)
	return writeJSON(w, resp)
}

type analyzeResponse struct {
	ai.Response[dataset.DataAnalysis]
	Source dataset.Source `json:"source"`
}

// POST /v1/{tenant}/data/analyze
// Body: {"data": [{...}], "filename": "...", "file_type": "csv"}
func (r *Router) handleAnalyzeData(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Data     dataset.Dataset `json:"data"`
		Filename string          `json:"filename"`
		FileType string          `json:"file_type"`
	}
	if err := r.decode(w, req, &body); err != nil {
		return err
	}
	filename, err := middleware.ValidateFilename(body.Filename)
	if err != nil {
		return badRequest{err}
	}
	fileType, err := middleware.ValidateFileType(body.FileType)
	if err != nil {
		return badRequest{err}
	}

	resp := r.aiSvc.CleanAndStructureData(req.Context(), body.Data, filename, fileType)
	middleware.RecordOperation(string(interaction.OpAnalyzeData), resp.Success, resp.Data.Source == dataset.SourceFallback)
	return writeJSON(w, analyzeResponse{Response: resp, Source: resp.Data.Source})
}

// POST /v1/{tenant}/chat
// Body: {"message": "...", "data": [{...}], "filename": "..."}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message  string          `json:"message"`
		Data     dataset.Dataset `json:"data"`
		Filename string          `json:"filename"`
	}
	if err := r.decode(w, req, &body); err != nil {
		return err
	}
	msg := middleware.SanitizeString(body.Message)
	if msg == "" {
		return invalid("message is required")
	}
	filename, err := middleware.ValidateFilename(body.Filename)
	if err != nil {
		return badRequest{err}
	}

	resp := r.aiSvc.GenerateChatResponse(req.Context(), msg, body.Data, filename)
	middleware.RecordOperation(string(interaction.OpChat), resp.Success, false)
	return writeJSON(w, resp)
}

// POST /v1/{tenant}/ocr/image
// multipart/form-data with the file in field "image"
func (r *Router) handleImageOCR(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+(1<<20))
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return invalid("invalid multipart form: %v", err)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("image")
	if err != nil {
		return invalid("image file is required")
	}
	file.Close()
	if err := middleware.ValidateImageUpload(header, r.maxUpload); err != nil {
		return badRequest{err}
	}

	resp := r.aiSvc.AnalyzeImageForOCR(req.Context(), uploadedImage{header})
	middleware.RecordOperation(string(interaction.OpImageOCR), resp.Success, false)
	return writeJSON(w, resp)
}

// GET /v1/{tenant}/interactions?page=&page_size=
func (r *Router) handleInteractions(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page, size = middleware.ValidatePage(page), middleware.ValidateLimit(size)

	list, err := r.aiSvc.ListInteractions(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{
		"page":      page,
		"page_size": size,
		"items":     list,
	})
}
