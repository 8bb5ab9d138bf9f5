package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDebug      = "debug"
	ModeProduction = "production"

	defaultInterface    = "0.0.0.0"
	defaultPort         = 5000
	defaultMode         = ModeProduction
	defaultMaxBodyBytes = 1 << 20
	defaultLogLevel     = "info"
	defaultHIBPBaseURL  = "https://api.pwnedpasswords.com/range/"
	defaultHIBPTimeout  = 10 * time.Second
)

type Config struct {
	HTTP struct {
		Port         uint16   `yaml:"port" env:"PORT"`
		Interface    string   `yaml:"interface" env:"HTTP_INTERFACE" valid:"host"`
		Mode         string   `yaml:"mode" env:"APP_ENV" valid:"in(debug|production)"`
		MaxBodyBytes int64    `yaml:"max_body_bytes" env:"MAX_BODY_SIZE"`
		CORSOrigins  []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
	} `yaml:"http"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
		File  string `yaml:"file" env:"LOG_FILE"`
	} `yaml:"log"`

	HIBP struct {
		BaseURL string        `yaml:"base_url" env:"HIBP_BASE_URL" valid:"url"`
		Timeout time.Duration `yaml:"timeout" env:"HIBP_TIMEOUT"`
	} `yaml:"hibp"`

	Wordlist struct {
		Path string `yaml:"path" env:"WORDLIST_PATH"`
	} `yaml:"wordlist"`

	Sentry struct {
		DSN string `yaml:"dsn" env:"SENTRY_DSN"`
	} `yaml:"sentry"`
}

// Debug reports whether the service runs in debug mode.
func (c *Config) Debug() bool {
	return c.HTTP.Mode == ModeDebug
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Interface, c.HTTP.Port)
}

// LoadConfig reads the optional YAML file, then a .env file if present,
// then applies environment overrides and defaults.
func LoadConfig(cfgPath string) (*Config, error) {
	cfg := Config{}

	if cfgPath != "" {
		yamlBytes, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	valid, err := govalidator.ValidateStruct(&cfg)
	if !valid || err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.HTTP.Port = uint16(port)
	}

	if v := os.Getenv("HTTP_INTERFACE"); v != "" {
		cfg.HTTP.Interface = v
	}

	// anything other than production runs in debug mode
	if v := os.Getenv("APP_ENV"); v != "" {
		if v == ModeProduction {
			cfg.HTTP.Mode = ModeProduction
		} else {
			cfg.HTTP.Mode = ModeDebug
		}
	}

	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid MAX_BODY_SIZE %q", v)
		}
		cfg.HTTP.MaxBodyBytes = limit
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.HTTP.CORSOrigins = append(cfg.HTTP.CORSOrigins, origin)
			}
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	if v := os.Getenv("HIBP_BASE_URL"); v != "" {
		cfg.HIBP.BaseURL = v
	}
	if v := os.Getenv("HIBP_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HIBP_TIMEOUT %q: %w", v, err)
		}
		cfg.HIBP.Timeout = timeout
	}

	if v := os.Getenv("WORDLIST_PATH"); v != "" {
		cfg.Wordlist.Path = v
	}

	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Interface == "" {
		cfg.HTTP.Interface = defaultInterface
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultPort
	}

	if cfg.HTTP.Mode == "" {
		cfg.HTTP.Mode = defaultMode
	}

	if cfg.HTTP.MaxBodyBytes <= 0 {
		cfg.HTTP.MaxBodyBytes = defaultMaxBodyBytes
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}

	if cfg.HIBP.BaseURL == "" {
		cfg.HIBP.BaseURL = defaultHIBPBaseURL
	}

	if cfg.HIBP.Timeout <= 0 {
		cfg.HIBP.Timeout = defaultHIBPTimeout
	}
}
