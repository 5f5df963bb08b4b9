package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

const (
	KeyCustom  = "custom"
	KeyDefault = "default"
)

// Option is one entry of the analysis type selector.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var options = []Option{
	{Key: KeyCustom, Label: "Custom"},
	{Key: "analyze", Label: "General Analysis"},
	{Key: "describe", Label: "Detailed Description"},
	{Key: "technical", Label: "Technical Analysis"},
	{Key: "creative", Label: "Creative Description"},
}

var aliases = map[string]string{
	"general":  "analyze",
	"detailed": "describe",
}

type Catalog struct {
	templates map[string]string
}

type file struct {
	Prompts map[string]string `yaml:"prompts"`
}

// Load reads a prompt_templates.yaml file. The default template is mandatory.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewConfigurationError(fmt.Sprintf("prompt templates not found: %s", path), err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, utils.NewConfigurationError("parse prompt templates", err)
	}

	return New(f.Prompts)
}

func New(templates map[string]string) (*Catalog, error) {
	if strings.TrimSpace(templates[KeyDefault]) == "" {
		return nil, utils.NewConfigurationError("prompt templates must define a non-empty \"default\"", nil)
	}

	c := &Catalog{templates: make(map[string]string, len(templates))}
	for k, v := range templates {
		c.templates[strings.ToLower(k)] = v
	}
	return c, nil
}

// Resolve returns the prompt for a selector key. Custom (or no key) yields the free text,
// unknown keys fall back to the default template.
func (c *Catalog) Resolve(key, custom string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || key == KeyCustom {
		return custom
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if tmpl, ok := c.templates[key]; ok {
		return tmpl
	}
	return c.templates[KeyDefault]
}

func (c *Catalog) Default() string {
	return c.templates[KeyDefault]
}

func (c *Catalog) Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// Templates returns a copy of every named template.
func (c *Catalog) Templates() map[string]string {
	out := make(map[string]string, len(c.templates))
	for k, v := range c.templates {
		out[k] = v
	}
	return out
}
