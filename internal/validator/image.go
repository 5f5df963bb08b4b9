package validator

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

const bytesPerMB = 1024 * 1024

var mimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ImageValidator decides whether an upload may be forwarded to the model.
// It holds no mutable state and is safe for concurrent use.
type ImageValidator struct {
	policy  models.ValidationPolicy
	allowed map[string]struct{}
}

func NewImageValidator(policy models.ValidationPolicy) *ImageValidator {
	allowed := make(map[string]struct{}, len(policy.AllowedExtensions))
	for _, ext := range policy.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &ImageValidator{policy: policy, allowed: allowed}
}

func (v *ImageValidator) Policy() models.ValidationPolicy {
	return v.policy
}

// Validate runs the size, extension and decode checks in that order and stops at the
// first failure. The cheap checks come first so oversized or misnamed files are never decoded.
func (v *ImageValidator) Validate(upload *models.UploadedImage) (*models.DecodedImage, error) {
	if upload == nil {
		return nil, utils.NewValidationError("missing file")
	}

	sizeMB := float64(upload.SizeBytes()) / bytesPerMB
	if sizeMB > float64(v.policy.MaxSizeMB) {
		return nil, utils.NewValidationError(fmt.Sprintf("file size %.1fMB exceeds limit (%dMB)", sizeMB, v.policy.MaxSizeMB))
	}

	ext := Extension(upload.Name)
	if _, ok := v.allowed[ext]; !ok {
		return nil, utils.NewValidationError(fmt.Sprintf("unsupported file type: %s", ext))
	}

	img, format, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid image file: %v", err))
	}

	bounds := img.Bounds()
	return &models.DecodedImage{
		Data:     upload.Data,
		MIMEType: mimeTypes[format],
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// Extension returns the lowercased text after the last dot of name, or "" when there is none.
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}
