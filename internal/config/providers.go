package config

import "time"

// ProvidersConfig lists completion providers in precedence order. The
// first fully-configured entry becomes the primary backend and the next
// the optional secondary; the choice is made once at process start and
// never re-evaluated per call.
type ProvidersConfig struct {
	Providers []CompletionProviderConfig `yaml:"providers"`
	Backoff   BackoffConfig              `yaml:"backoff"`
}

type CompletionProviderConfig struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"` // "openai" or "gemini"
	BaseURL string            `yaml:"base_url"`
	APIKey  string            `yaml:"api_key"`
	Model   string            `yaml:"model"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Configured reports whether the entry has everything needed to serve
// requests.
func (c CompletionProviderConfig) Configured() bool {
	return c.APIKey != "" && c.Model != ""
}

// BackoffConfig tunes the retry wait computation on rate limiting.
type BackoffConfig struct {
	Base          time.Duration `yaml:"base"`
	Max           time.Duration `yaml:"max"`
	MaxRetryAfter time.Duration `yaml:"max_retry_after"`
	Jitter        time.Duration `yaml:"jitter"`
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Base:          2 * time.Second,
		Max:           45 * time.Second,
		MaxRetryAfter: 30 * time.Second,
		Jitter:        500 * time.Millisecond,
	}
}
