// Package config loads process configuration from the environment.
// A .env file, when present, is loaded first and never overrides
// variables already set in the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/iudanet/portfolio-tracker/internal/crypto"
)

// Server содержит настройки HTTP сервера
type Server struct {
	TrustedProxies   []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath           string        `env:"DB_PATH" envDefault:"portfolio.db"`
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET,required"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"2h"`
	AuthRateWindow   time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	AuthRateLimit    int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
}

// Client содержит настройки CLI клиента
type Client struct {
	ServerURL   string        `env:"PORTFOLIO_SERVER_URL" envDefault:"http://localhost:8080"`
	SessionPath string        `env:"PORTFOLIO_SESSION_DB" envDefault:"portfolio-client.db"`
	Timeout     time.Duration `env:"PORTFOLIO_HTTP_TIMEOUT" envDefault:"30s"`
}

// LoadServer загружает и проверяет конфигурацию сервера.
// envFile может быть пустым, тогда читается ./.env если он есть.
func LoadServer(envFile string) (*Server, error) {
	if err := loadDotenv(envFile); err != nil {
		return nil, err
	}

	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient загружает конфигурацию клиента
func LoadClient(envFile string) (*Client, error) {
	if err := loadDotenv(envFile); err != nil {
		return nil, err
	}

	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}

	return cfg, nil
}

// Validate проверяет значения, которые env не умеет проверить сам
func (c *Server) Validate() error {
	var errs []error

	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT token TTLs must be positive"))
	}
	if c.BcryptCost < crypto.MinPasswordCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", crypto.MinPasswordCost))
	}
	if c.AuthRateLimit < 1 || c.AuthRateWindow <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// TrustedProxyPrefixes разбирает TRUSTED_PROXIES: CIDR или одиночные адреса.
// Пустой список значит, что заголовки прокси не учитываются.
func (c *Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", raw)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", raw)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// SlogLevel returns the configured level; Validate has already rejected bad values.
func (c *Server) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel понимает debug, info, warn и error
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func loadDotenv(path string) error {
	if path == "" {
		// .env необязателен
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
