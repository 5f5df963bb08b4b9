package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

func TestLoadRepositoryTemplates(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "prompt_templates.yaml"))
	require.NoError(t, err)

	for _, key := range []string{"default", "analyze", "describe", "technical", "creative"} {
		assert.NotEmpty(t, c.Templates()[key], key)
	}
}

func TestResolve(t *testing.T) {
	c, err := New(map[string]string{
		"default":   "Describe this image",
		"analyze":   "Analyze this image",
		"describe":  "Describe in detail",
		"technical": "Technical analysis",
		"creative":  "Be creative",
	})
	require.NoError(t, err)

	tests := []struct {
		key    string
		custom string
		want   string
	}{
		{"custom", "What breed is the cat?", "What breed is the cat?"},
		{"", "free text", "free text"},
		{"custom", "   ", "   "},
		{"analyze", "ignored", "Analyze this image"},
		{"Technical", "", "Technical analysis"},
		{"general", "", "Analyze this image"},
		{"detailed", "", "Describe in detail"},
		{"unknown", "", "Describe this image"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Resolve(tt.key, tt.custom))
		})
	}
}

func TestNewRequiresDefault(t *testing.T) {
	_, err := New(map[string]string{"analyze": "x"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConfiguration))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, utils.IsKind(err, utils.KindConfiguration))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("prompts: [unclosed"), 0644))
	_, err = Load(bad)
	assert.True(t, utils.IsKind(err, utils.KindConfiguration))
}

func TestOptionsStartWithCustom(t *testing.T) {
	c, err := New(map[string]string{"default": "d"})
	require.NoError(t, err)

	opts := c.Options()
	require.Len(t, opts, 5)
	assert.Equal(t, KeyCustom, opts[0].Key)
}
