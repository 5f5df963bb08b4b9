package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

const envPrefix = "IMGANALYZER"

type AppConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	PageIcon    string `mapstructure:"page_icon"`
}

type ModelConfig struct {
	Provider string `mapstructure:"provider"`
	Name     string `mapstructure:"name"`
	BaseURL  string `mapstructure:"base_url"`
}

type UIConfig struct {
	MaxFileSize       int      `mapstructure:"max_file_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DatabaseConfig struct {
	// Path of the SQLite event log. Empty disables it.
	Path string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Environment string         `mapstructure:"environment"`
	App         AppConfig      `mapstructure:"app"`
	Model       ModelConfig    `mapstructure:"model"`
	UI          UIConfig       `mapstructure:"ui"`
	Server      ServerConfig   `mapstructure:"server"`
	Log         LogConfig      `mapstructure:"log"`
	Database    DatabaseConfig `mapstructure:"database"`
	CORS        CORSConfig     `mapstructure:"cors"`

	// APIKey comes from the environment only, never from the YAML file.
	APIKey string `mapstructure:"-"`
}

// Load reads .env, then the YAML model config at path, then IMGANALYZER_* overrides.
// A missing file, an invalid value or a missing credential yields a configuration error.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil, utils.NewConfigurationError(fmt.Sprintf("configuration file not found: %s", path), err)
		}
		return nil, utils.NewConfigurationError("load config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, utils.NewConfigurationError("unmarshal config", err)
	}

	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	cfg.APIKey = apiKeyFor(cfg.Model.Provider)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the invariants the rest of the process relies on.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return utils.NewConfigurationError("model.name is required", nil)
	}
	if c.UI.MaxFileSize <= 0 {
		return utils.NewConfigurationError(fmt.Sprintf("ui.max_file_size must be positive, got %d", c.UI.MaxFileSize), nil)
	}

	exts := make([]string, 0, len(c.UI.AllowedExtensions))
	for _, ext := range c.UI.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		return utils.NewConfigurationError("ui.allowed_extensions must not be empty", nil)
	}
	c.UI.AllowedExtensions = exts

	switch c.Model.Provider {
	case "gemini", "openai":
	default:
		return utils.NewConfigurationError(fmt.Sprintf("unknown model provider: %q", c.Model.Provider), nil)
	}

	if c.APIKey == "" {
		return utils.NewConfigurationError(fmt.Sprintf("%s not found in environment variables", apiKeyEnv(c.Model.Provider)), nil)
	}

	return nil
}

func (c *Config) Policy() models.ValidationPolicy {
	exts := make([]string, len(c.UI.AllowedExtensions))
	copy(exts, c.UI.AllowedExtensions)
	return models.ValidationPolicy{
		MaxSizeMB:         c.UI.MaxFileSize,
		AllowedExtensions: exts,
	}
}

func apiKeyEnv(provider string) string {
	if provider == "openai" {
		return "OPENAI_API_KEY"
	}
	return "GOOGLE_API_KEY"
}

func apiKeyFor(provider string) string {
	return strings.TrimSpace(os.Getenv(apiKeyEnv(provider)))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("app.title", "Image Analyzer")
	v.SetDefault("app.description", "Upload an image and get an AI-generated analysis")
	v.SetDefault("app.page_icon", "🔍")

	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.name", "gemini-1.5-flash")
	v.SetDefault("model.base_url", "")

	v.SetDefault("ui.max_file_size", 10)
	v.SetDefault("ui.allowed_extensions", []string{"jpg", "jpeg", "png", "webp"})

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/app.log")

	v.SetDefault("database.path", "")
	v.SetDefault("cors.allowed_origins", []string{})
}
