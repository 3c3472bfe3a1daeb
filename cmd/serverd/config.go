package main

import (
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/goliatone/go-errors"
)

// Config is loadable from environment variables (IDENTITY_ prefix), flags,
// or a YAML config file.
type Config struct {
	Addr             string        `default:":3069" usage:"HTTP listen address"`
	SigningSecret    string        `env:"JWT_SECRET" usage:"HMAC secret for bearer tokens" flag:"signing-secret"`
	TokenTTL         time.Duration `default:"168h" usage:"Bearer token validity window" flag:"token-ttl"`
	RegistrationOpen bool          `default:"true" usage:"Allow self registration" flag:"registration-open"`

	// APIKeys lists trusted service clients as name=key pairs.
	APIKeys []string `env:"CLIENT_API_KEYS" usage:"Service API keys as name=key pairs" flag:"api-keys"`

	Storage StorageConfig
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Backend string `default:"memory" usage:"Storage backend: memory or document"`
	DSN     string `default:"file:identity.db" usage:"Document backend DSN"`
}

// LoadConfig loads and validates the process configuration.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "IDENTITY",
		Files:     []string{"config.yaml", "/etc/identity/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "load config")
	}

	if cfg.SigningSecret == "" {
		return nil, errors.New("signing secret is required: set IDENTITY_JWT_SECRET", errors.CategoryBadInput)
	}

	switch cfg.Storage.Backend {
	case "memory", "document":
	default:
		return nil, errors.New("storage backend must be memory or document", errors.CategoryBadInput).
			WithMetadata(map[string]any{"backend": cfg.Storage.Backend})
	}

	return &cfg, nil
}

// ServiceKeys parses the name=key pairs into the apikey middleware's
// key-to-principal map.
func (c *Config) ServiceKeys() (map[string]string, error) {
	keys := make(map[string]string, len(c.APIKeys))
	for _, pair := range c.APIKeys {
		name, key, ok := strings.Cut(pair, "=")
		if !ok || name == "" || key == "" {
			return nil, errors.New("api key entries must be name=key pairs", errors.CategoryBadInput).
				WithMetadata(map[string]any{"entry": pair})
		}
		keys[key] = name
	}
	return keys, nil
}
