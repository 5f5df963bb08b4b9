package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
	"github.com/BerylCAtieno/image-analyzer/internal/validator"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GenerateContent(ctx context.Context, prompt string, image *models.DecodedImage) (string, error) {
	args := m.Called(ctx, prompt, image)
	return args.String(0), args.Error(1)
}

func (m *mockClient) IsHealthy(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

type panickingClient struct{}

func (panickingClient) GenerateContent(context.Context, string, *models.DecodedImage) (string, error) {
	panic("nil session")
}

func (panickingClient) IsHealthy(context.Context) bool { return false }

type countingValidator struct {
	calls int
	inner Validator
}

func (v *countingValidator) Validate(upload *models.UploadedImage) (*models.DecodedImage, error) {
	v.calls++
	return v.inner.Validate(upload)
}

func encode(t *testing.T, format string, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	img.Set(3, 3, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	default:
		require.NoError(t, png.Encode(&buf, img))
	}

	data := buf.Bytes()
	if len(data) < size {
		data = append(data, make([]byte, size-len(data))...)
	}
	return data
}

func newPipeline(policy models.ValidationPolicy, client *mockClient) (*Pipeline, *countingValidator) {
	v := &countingValidator{inner: validator.NewImageValidator(policy)}
	return New(v, client, utils.NewNopLogger()), v
}

var policy = models.ValidationPolicy{MaxSizeMB: 5, AllowedExtensions: []string{"jpg", "png"}}

func TestAnalyzeSuccess(t *testing.T) {
	client := &mockClient{}
	client.On("GenerateContent", mock.Anything, "Describe this image", mock.MatchedBy(func(img *models.DecodedImage) bool {
		return img != nil && img.Format == "jpeg" && img.MIMEType == "image/jpeg"
	})).Return("A cat sitting on a chair.", nil).Once()

	p, _ := newPipeline(policy, client)
	upload := &models.UploadedImage{Name: "cat.jpg", Data: encode(t, "jpeg", 2*1024*1024)}

	result := p.Analyze(context.Background(), upload, "Describe this image")

	require.True(t, result.OK())
	assert.Equal(t, "A cat sitting on a chair.", result.Text())
	assert.Equal(t, "success", result.OutcomeKind())
	require.NotNil(t, result.Image)
	assert.Equal(t, 16, result.Image.Width)
	client.AssertNumberOfCalls(t, "GenerateContent", 1)
}

func TestAnalyzeMissingImage(t *testing.T) {
	client := &mockClient{}
	p, v := newPipeline(policy, client)

	result := p.Analyze(context.Background(), nil, "Describe this image")

	assert.False(t, result.OK())
	assert.Equal(t, utils.KindValidation, result.Kind())
	assert.Contains(t, result.Message(), "upload an image first")
	assert.Zero(t, v.calls)
	client.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeBlankPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t"} {
		client := &mockClient{}
		p, v := newPipeline(policy, client)

		result := p.Analyze(context.Background(), &models.UploadedImage{Name: "a.png", Data: encode(t, "png", 0)}, prompt)

		assert.False(t, result.OK())
		assert.Contains(t, result.Message(), "provide a prompt")
		assert.Zero(t, v.calls)
		client.AssertNumberOfCalls(t, "GenerateContent", 0)
	}
}

func TestAnalyzeOversizedUpload(t *testing.T) {
	client := &mockClient{}
	p, _ := newPipeline(models.ValidationPolicy{MaxSizeMB: 10, AllowedExtensions: []string{"png"}}, client)

	upload := &models.UploadedImage{Name: "big.png", Data: encode(t, "png", 11*1024*1024)}
	result := p.Analyze(context.Background(), upload, "Describe")

	assert.False(t, result.OK())
	assert.Equal(t, utils.KindValidation, result.Kind())
	assert.Contains(t, result.Message(), "11.0MB exceeds limit (10MB)")
	client.AssertNumberOfCalls(t, "GenerateContent", 0)
}

func TestAnalyzeRejectsBadExtensionAndContent(t *testing.T) {
	client := &mockClient{}
	p, _ := newPipeline(policy, client)

	result := p.Analyze(context.Background(), &models.UploadedImage{Name: "cat.gif", Data: encode(t, "png", 0)}, "Describe")
	assert.Equal(t, "unsupported file type: gif", result.Message())

	result = p.Analyze(context.Background(), &models.UploadedImage{Name: "cat.png", Data: []byte("not an image")}, "Describe")
	assert.True(t, strings.HasPrefix(result.Message(), "invalid image file:"))

	client.AssertNumberOfCalls(t, "GenerateContent", 0)
}

func TestAnalyzeAPIErrorIsNotRetried(t *testing.T) {
	client := &mockClient{}
	client.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return("", utils.NewAPIError("quota exceeded", nil))

	p, _ := newPipeline(policy, client)
	result := p.Analyze(context.Background(), &models.UploadedImage{Name: "a.png", Data: encode(t, "png", 0)}, "Describe")

	assert.False(t, result.OK())
	assert.Equal(t, utils.KindAPI, result.Kind())
	assert.Contains(t, result.Message(), "api error")
	assert.Contains(t, result.Message(), "quota exceeded")
	client.AssertNumberOfCalls(t, "GenerateContent", 1)
}

func TestAnalyzeModelError(t *testing.T) {
	client := &mockClient{}
	client.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return("", utils.NewModelError("empty response from Gemini model"))

	p, _ := newPipeline(policy, client)
	result := p.Analyze(context.Background(), &models.UploadedImage{Name: "a.png", Data: encode(t, "png", 0)}, "Describe")

	assert.Equal(t, utils.KindModel, result.Kind())
	assert.Equal(t, "model error: empty response from Gemini model", result.Message())
}

func TestAnalyzeUnexpectedErrorIsNotEchoed(t *testing.T) {
	client := &mockClient{}
	client.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("secret internal detail"))

	p, _ := newPipeline(policy, client)
	result := p.Analyze(context.Background(), &models.UploadedImage{Name: "a.png", Data: encode(t, "png", 0)}, "Describe")

	assert.Equal(t, utils.KindInternal, result.Kind())
	assert.Equal(t, MsgUnexpected, result.Message())
	assert.NotContains(t, result.Message(), "secret")
}

func TestAnalyzeRecoversClientPanic(t *testing.T) {
	var logs bytes.Buffer
	v := validator.NewImageValidator(policy)
	p := New(v, panickingClient{}, utils.NewWriterLogger(&logs))

	result := p.Analyze(context.Background(), &models.UploadedImage{Name: "a.png", Data: encode(t, "png", 0)}, "Describe")

	assert.Equal(t, utils.KindInternal, result.Kind())
	assert.Equal(t, MsgUnexpected, result.Message())
	assert.Contains(t, logs.String(), "nil session")
}

func TestAnalyzeDoesNotCache(t *testing.T) {
	client := &mockClient{}
	client.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("first", nil).Once()
	client.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("second", nil).Once()

	p, _ := newPipeline(policy, client)
	upload := &models.UploadedImage{Name: "a.png", Data: encode(t, "png", 0)}

	assert.Equal(t, "first", p.Analyze(context.Background(), upload, "Describe").Text())
	assert.Equal(t, "second", p.Analyze(context.Background(), upload, "Describe").Text())
	client.AssertNumberOfCalls(t, "GenerateContent", 2)
}
