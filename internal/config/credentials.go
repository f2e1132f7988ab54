package config

import (
	"os"

	"github.com/TobiSchelling/blogsmith/internal/errs"
)

// Credentials holds secrets read from the environment for one run.
type Credentials struct {
	AnthropicKey      string
	OpenAIKey         string
	GeminiKey         string
	WordPressPassword string
}

// Credentials reads every configured secret from the environment.
func (c *Config) Credentials() Credentials {
	return Credentials{
		AnthropicKey:      os.Getenv(c.Keys.AnthropicKeyEnv),
		OpenAIKey:         os.Getenv(c.Keys.OpenAIKeyEnv),
		GeminiKey:         os.Getenv(c.Keys.GeminiKeyEnv),
		WordPressPassword: os.Getenv(c.Keys.WordPressPasswordEnv),
	}
}

// MissingKey builds the configuration-missing error for a provider whose
// credential variable is empty.
func MissingKey(provider, envVar string) error {
	return errs.New(errs.ConfigMissing,
		"%s API key not configured. Set %s (environment or .env) or run 'blogsmith init'", provider, envVar)
}
