package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Generator providers.
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

var (
	ErrMissingAPIKey   = errors.New("gemini_api_key is required for the gemini provider")
	ErrUnknownProvider = errors.New("unknown provider")
)

// Config represents the application configuration.
type Config struct {
	Provider      string   `json:"provider"`
	GeminiAPIKey  string   `json:"gemini_api_key"`
	DatabaseURL   string   `json:"DATABASE_URL"`
	TextModel     string   `json:"text_model"`
	ImageModel    string   `json:"image_model"`
	LocalLLMURL   string   `json:"local_llm_url"`
	LocalLLMModel string   `json:"local_llm_model"`
	ListenAddr    string   `json:"listen_addr"`
	CORSOrigins   []string `json:"cors_origins"`
	ImagesDir     string   `json:"images_dir"`
	LogLevel      string   `json:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Provider:    ProviderGemini,
		ListenAddr:  ":8080",
		CORSOrigins: []string{"http://localhost:8081"},
		ImagesDir:   "images",
		LogLevel:    "normal",
	}
}

// Load reads the JSON file at path, then applies a .env file from the
// working directory and environment overrides. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		configData, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		default:
			if err := json.Unmarshal(configData, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to unmarshal %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&c.Provider, "CHEFSNAP_PROVIDER")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.TextModel, "CHEFSNAP_TEXT_MODEL")
	setString(&c.ImageModel, "CHEFSNAP_IMAGE_MODEL")
	setString(&c.LocalLLMURL, "LOCAL_LLM_URL")
	setString(&c.LocalLLMModel, "LOCAL_LLM_MODEL")
	setString(&c.ListenAddr, "CHEFSNAP_ADDR")
	setString(&c.ImagesDir, "CHEFSNAP_IMAGES_DIR")
	setString(&c.LogLevel, "CHEFSNAP_LOG_LEVEL")
	if v := os.Getenv("PORT"); v != "" && os.Getenv("CHEFSNAP_ADDR") == "" {
		c.ListenAddr = ":" + v
	}

	var origins string
	setString(&origins, "CORS_ORIGINS")
	if origins != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
}

// Validate checks what is needed to build a generator.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return ErrMissingAPIKey
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}
