// Package config carrega a configuração do serviço a partir do ambiente.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config reúne as variáveis FIN_* do serviço.
type Config struct {
	Env     string `envconfig:"FIN_ENV" default:"development"`
	Addr    string `envconfig:"FIN_ADDR" default:":8084"`
	GinMode string `envconfig:"FIN_GIN_MODE"`

	ReadTimeout  time.Duration `envconfig:"FIN_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"FIN_WRITE_TIMEOUT" default:"60s"`

	ERPBaseURL string        `envconfig:"FIN_ERP_BASE_URL" required:"true"`
	ERPTimeout time.Duration `envconfig:"FIN_ERP_TIMEOUT" default:"30s"`

	RedisAddr      string        `envconfig:"FIN_REDIS_ADDR"`
	PersonCacheTTL time.Duration `envconfig:"FIN_PERSON_CACHE_TTL" default:"1h"`

	// requisições por minuto por IP; 0 desliga o limite
	RateLimit int `envconfig:"FIN_RATE_LIMIT" default:"120"`

	MaxUploadMB int64 `envconfig:"FIN_MAX_UPLOAD_MB" default:"32"`
}

// Load lê o .env (opcional) e processa as variáveis de ambiente.
func Load() (*Config, error) {
	// .env é opcional: se existir, carrega
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.ERPBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: FIN_ERP_BASE_URL inválida: %q", c.ERPBaseURL)
	}
	if c.ERPTimeout <= 0 {
		return errors.New("config: FIN_ERP_TIMEOUT deve ser positivo")
	}
	if c.RateLimit < 0 {
		return errors.New("config: FIN_RATE_LIMIT não pode ser negativo")
	}
	return nil
}

// IsProduction informa se o serviço roda em produção.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

// CacheEnabled informa se o cache Redis foi configurado.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
