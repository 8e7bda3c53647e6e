package fetch

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrymomot/ledgerchat/pkg/config"
)

// Root selects which configured base URL an endpoint lives under.
type Root string

const (
	RootDev  Root = "dev"
	RootChat Root = "chat"
)

type Config struct {
	DevRoot     string        `env:"API_DEV_ROOT,required"`
	ChatRoot    string        `env:"API_CHAT_ROOT,required"`
	Timeout     time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	UserAgent   string        `env:"API_USER_AGENT" envDefault:"ledgerchat/1.0"`
	MaxBodySize int64         `env:"API_MAX_BODY_SIZE" envDefault:"4194304"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks that both roots are absolute http(s) URLs.
func (c Config) Validate() error {
	for name, root := range map[string]string{"API_DEV_ROOT": c.DevRoot, "API_CHAT_ROOT": c.ChatRoot} {
		u, err := url.Parse(root)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", ErrInvalidConfig, name, root)
		}
	}
	return nil
}

func (c Config) root(r Root) (string, error) {
	switch r {
	case RootDev:
		return c.DevRoot, nil
	case RootChat:
		return c.ChatRoot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoot, r)
	}
}
