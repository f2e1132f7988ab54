package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// LLM provider names.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Image provider policies.
const (
	ImagesAuto   = "auto"
	ImagesGemini = "gemini"
	ImagesOpenAI = "openai"
	ImagesNone   = "none"
)

// Config is the loaded configuration. It is not mutated after Load returns.
type Config struct {
	Keys      CredentialEnv `yaml:"credentials"`
	LLM       LLM           `yaml:"llm"`
	Images    Images        `yaml:"images"`
	WordPress WordPress     `yaml:"wordpress"`
	Content   Content       `yaml:"content"`
	Output    Output        `yaml:"output"`
	Server    Server        `yaml:"server"`
	Logging   Logging       `yaml:"logging"`
}

// CredentialEnv names the environment variables that hold secrets.
type CredentialEnv struct {
	AnthropicKeyEnv      string `yaml:"anthropic_key_env"`
	OpenAIKeyEnv         string `yaml:"openai_key_env"`
	GeminiKeyEnv         string `yaml:"gemini_key_env"`
	WordPressPasswordEnv string `yaml:"wordpress_password_env"`
}

type LLM struct {
	DefaultProvider string  `yaml:"default_provider"`
	AnthropicModel  string  `yaml:"anthropic_model"`
	OpenAIModel     string  `yaml:"openai_model"`
	GeminiModel     string  `yaml:"gemini_model"`
	OllamaModel     string  `yaml:"ollama_model"`
	OllamaURL       string  `yaml:"ollama_url"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
}

// Timeout returns the per-request LLM timeout.
func (l LLM) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// Validate validates the LLM configuration.
func (l *LLM) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.DefaultProvider, validation.Required,
			validation.In(ProviderClaude, ProviderOpenAI, ProviderGemini, ProviderOllama)),
		validation.Field(&l.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&l.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&l.TimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

type Images struct {
	Provider     string   `yaml:"provider"`
	GeminiModels []string `yaml:"gemini_models"`
	OpenAIModel  string   `yaml:"openai_model"`
	AspectRatio  string   `yaml:"aspect_ratio"`
}

// Validate validates the image configuration.
func (i *Images) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Provider, validation.Required,
			validation.In(ImagesAuto, ImagesGemini, ImagesOpenAI, ImagesNone)),
		validation.Field(&i.AspectRatio, validation.In("16:9", "1:1", "9:16")),
	)
}

type WordPress struct {
	URL              string `yaml:"url"`
	Username         string `yaml:"username"`
	AutoPublishDraft bool   `yaml:"auto_publish_draft"`
	RecentPosts      int    `yaml:"recent_posts"`
	RelatedPosts     int    `yaml:"related_posts"`
	RelatedHeading   string `yaml:"related_heading"`
	FeedFallback     bool   `yaml:"feed_fallback"`
}

// Validate validates the WordPress configuration.
func (w *WordPress) Validate() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.URL, is.URL),
		validation.Field(&w.RecentPosts, validation.Min(1), validation.Max(100)),
		validation.Field(&w.RelatedPosts, validation.Min(0)),
	)
}

// Configured reports whether a site URL and username are set.
func (w WordPress) Configured() bool {
	return w.URL != "" && w.Username != ""
}

type Content struct {
	DefaultTone        string `yaml:"default_tone"`
	DefaultArticleType string `yaml:"default_article_type"`
}

type Output struct {
	Dir     string `yaml:"dir"`
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

// Validate validates the server configuration.
func (s *Server) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

type Logging struct {
	Level string `yaml:"level"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Images.Validate(); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	if err := c.WordPress.Validate(); err != nil {
		return fmt.Errorf("wordpress: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// ConfigDir returns the XDG config directory for blogsmith.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "blogsmith")
}

// DataDir returns the XDG data directory for blogsmith.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "blogsmith")
}

// TemplatesDir returns the directory holding user tone templates.
func TemplatesDir() string {
	return filepath.Join(ConfigDir(), "templates")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/blogsmith/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'blogsmith init' to create a default config",
		xdgConfig,
	)
}

// LoadDotEnv loads .env files from the working directory and the config
// directory. Variables already present in the environment are kept.
func LoadDotEnv() {
	for _, path := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// Load reads, parses, and validates a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.WordPress.URL = strings.TrimRight(cfg.WordPress.URL, "/")
	return cfg, nil
}

// Default returns the built-in defaults used beneath any config file.
func Default() *Config {
	return &Config{
		Keys: CredentialEnv{
			AnthropicKeyEnv:      "ANTHROPIC_API_KEY",
			OpenAIKeyEnv:         "OPENAI_API_KEY",
			GeminiKeyEnv:         "GEMINI_API_KEY",
			WordPressPasswordEnv: "WORDPRESS_APP_PASSWORD",
		},
		LLM: LLM{
			DefaultProvider: ProviderClaude,
			AnthropicModel:  "claude-sonnet-4-5-20250929",
			OpenAIModel:     "gpt-4o",
			GeminiModel:     "gemini-2.5-pro",
			OllamaModel:     "qwen2.5:14b",
			OllamaURL:       "http://localhost:11434",
			MaxTokens:       8192,
			Temperature:     0.7,
			TimeoutSeconds:  600,
		},
		Images: Images{
			Provider:     ImagesAuto,
			GeminiModels: []string{"imagen-3.0-generate-002", "imagen-3.0-generate-001"},
			OpenAIModel:  "dall-e-3",
			AspectRatio:  "16:9",
		},
		WordPress: WordPress{
			AutoPublishDraft: true,
			RecentPosts:      20,
			RelatedPosts:     3,
			RelatedHeading:   "More From the Blog",
		},
		Content: Content{
			DefaultTone:        "motivational",
			DefaultArticleType: "operational guide",
		},
		Output:  Output{Dir: "~/Desktop/BlogDrafts"},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}
}

// OutputDir returns the drafts directory with a leading ~ expanded.
func (c *Config) OutputDir() string {
	return ExpandHome(c.Output.Dir)
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return ExpandHome(c.Output.DataDir)
	}
	return DataDir()
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
