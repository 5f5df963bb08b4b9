package models

import (
	"time"

	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

// UploadedImage is a raw upload as handed over by the presentation layer.
// It lives only for the duration of one analysis request.
type UploadedImage struct {
	Data []byte
	Name string
}

func (u *UploadedImage) SizeBytes() int64 {
	return int64(len(u.Data))
}

type ValidationPolicy struct {
	MaxSizeMB         int
	AllowedExtensions []string
}

// DecodedImage is an upload that passed validation.
type DecodedImage struct {
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
}

// AnalysisResult is either a success carrying text or a failure carrying a kind and message.
// Build it with Success or Failure only.
type AnalysisResult struct {
	text    string
	kind    utils.Kind
	message string
	failed  bool

	Image *DecodedImage
}

func Success(text string, image *DecodedImage) AnalysisResult {
	return AnalysisResult{text: text, Image: image}
}

func Failure(kind utils.Kind, message string) AnalysisResult {
	return AnalysisResult{kind: kind, message: message, failed: true}
}

func (r AnalysisResult) OK() bool { return !r.failed }
func (r AnalysisResult) Text() string { return r.text }
func (r AnalysisResult) Kind() utils.Kind { return r.kind }
func (r AnalysisResult) Message() string { return r.message }

// OutcomeKind is "success" or the failure kind.
func (r AnalysisResult) OutcomeKind() string {
	if r.OK() {
		return "success"
	}
	return string(r.kind)
}

type AnalysisRequest struct {
	Image      *UploadedImage
	PromptKey  string
	PromptText string
}

type AnalysisResponse struct {
	Text       string    `json:"text"`
	Format     string    `json:"format,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// AnalysisEvent records request metadata only, never image bytes, prompt text or output text.
type AnalysisEvent struct {
	ID         string    `json:"id" db:"id"`
	Extension  string    `json:"extension" db:"extension"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	PromptKey  string    `json:"prompt_key" db:"prompt_key"`
	Outcome    string    `json:"outcome" db:"outcome"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type OutcomeCount struct {
	Outcome string `json:"outcome" db:"outcome"`
	Count   int64  `json:"count" db:"count"`
}
