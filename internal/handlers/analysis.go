package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/prompts"
	"github.com/BerylCAtieno/image-analyzer/internal/services"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// formOverhead leaves room for the prompt fields and multipart framing.
const formOverhead = 1 << 20

// PageInfo is the static header of the page.
type PageInfo struct {
	Title       string
	Description string
	Icon        string
}

type AnalysisHandler struct {
	service services.AnalysisService
	page    PageInfo
	logger  *utils.Logger
}

func NewAnalysisHandler(service services.AnalysisService, page PageInfo, logger *utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		page:    page,
		logger:  logger,
	}
}

type resultView struct {
	Filename string
	Text     string
	Error    string
	Width    int
	Height   int
}

type pageData struct {
	PageInfo
	MaxSizeMB    int
	Formats      string
	Accept       string
	Options      []prompts.Option
	SelectedKey  string
	CustomPrompt string
	Result       *resultView
}

func (h *AnalysisHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage(prompts.KeyCustom, h.service.Prompts().Default()))
}

// AnalyzeForm handles the HTML form post and re-renders the page with the outcome.
func (h *AnalysisHandler) AnalyzeForm(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(w, r)
	if err != nil {
		data := h.newPage(prompts.KeyCustom, h.service.Prompts().Default())
		data.Result = &resultView{Error: messageOf(err)}
		h.render(w, statusOf(err), data)
		return
	}

	result := h.service.Analyze(r.Context(), req)

	data := h.newPage(req.PromptKey, req.PromptText)
	view := &resultView{}
	if req.Image != nil {
		view.Filename = req.Image.Name
	}
	if result.OK() {
		view.Text = result.Text()
		if result.Image != nil {
			view.Width, view.Height = result.Image.Width, result.Image.Height
		}
	} else {
		view.Error = result.Message()
	}
	data.Result = view

	h.render(w, statusForKind(result), data)
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	result := h.service.Analyze(r.Context(), req)
	if !result.OK() {
		h.respondJSON(w, statusForKind(result), models.ErrorResponse{
			Error: result.Message(),
			Kind:  string(result.Kind()),
		})
		return
	}

	resp := models.AnalysisResponse{
		Text:       result.Text(),
		AnalyzedAt: time.Now().UTC(),
	}
	if result.Image != nil {
		resp.Format = result.Image.Format
		resp.Width = result.Image.Width
		resp.Height = result.Image.Height
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) Prompts(w http.ResponseWriter, r *http.Request) {
	catalog := h.service.Prompts()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"options":   catalog.Options(),
		"templates": catalog.Templates(),
	})
}

// ModelHealth runs a live generation against the provider. Diagnostics only.
func (h *AnalysisHandler) ModelHealth(w http.ResponseWriter, r *http.Request) {
	if h.service.ModelHealthy(r.Context()) {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}
	h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
}

func (h *AnalysisHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"outcomes": counts})
}

// parseRequest reads the multipart form into request-scoped state. A missing file
// yields a request with a nil image so the pipeline reports it.
func (h *AnalysisHandler) parseRequest(w http.ResponseWriter, r *http.Request) (*models.AnalysisRequest, error) {
	maxSizeMB := h.service.Policy().MaxSizeMB
	limit := int64(maxSizeMB+1)<<20 + formOverhead

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return nil, oversizedBodyError(r.ContentLength, maxSizeMB)
		}
		return nil, utils.NewBadRequestError("invalid form data")
	}
	defer r.MultipartForm.RemoveAll()

	req := &models.AnalysisRequest{
		PromptKey:  r.FormValue("prompt_type"),
		PromptText: r.FormValue("prompt"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return nil, utils.NewBadRequestError("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", "error", err, "filename", header.Filename)
		return nil, utils.NewInternalError("failed to read file")
	}

	h.logger.Debug("Image upload received", "filename", header.Filename, "size_bytes", len(data))

	req.Image = &models.UploadedImage{Data: data, Name: header.Filename}
	return req, nil
}

// oversizedBodyError reports a body cut off by the form cap. The size is the
// declared Content-Length, which includes the multipart framing.
func oversizedBodyError(contentLength int64, maxSizeMB int) *utils.AppError {
	if contentLength > 0 {
		sizeMB := float64(contentLength) / (1024 * 1024)
		return utils.NewValidationError(fmt.Sprintf("file size ~%.1fMB exceeds limit (%dMB)", sizeMB, maxSizeMB))
	}
	return utils.NewValidationError(fmt.Sprintf("file size exceeds limit (%dMB)", maxSizeMB))
}

func (h *AnalysisHandler) newPage(selected, custom string) pageData {
	policy := h.service.Policy()

	accept := make([]string, len(policy.AllowedExtensions))
	for i, ext := range policy.AllowedExtensions {
		accept[i] = "." + ext
	}
	if selected == "" {
		selected = prompts.KeyCustom
	}

	return pageData{
		PageInfo:     h.page,
		MaxSizeMB:    policy.MaxSizeMB,
		Formats:      strings.ToUpper(strings.Join(policy.AllowedExtensions, ", ")),
		Accept:       strings.Join(accept, ","),
		Options:      h.service.Prompts().Options(),
		SelectedKey:  selected,
		CustomPrompt: custom,
	}
}

func (h *AnalysisHandler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Failed to render page", "error", err)
	}
}

func (h *AnalysisHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *AnalysisHandler) respondError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	message := messageOf(err)

	h.logger.Error("Request error", "status", status, "error", message)

	h.respondJSON(w, status, models.ErrorResponse{Error: message, Kind: string(utils.KindOf(err))})
}

func statusOf(err error) int {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func messageOf(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

func statusForKind(result models.AnalysisResult) int {
	if result.OK() {
		return http.StatusOK
	}
	switch result.Kind() {
	case utils.KindValidation:
		return http.StatusBadRequest
	case utils.KindModel, utils.KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
