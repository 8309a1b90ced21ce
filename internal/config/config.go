package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/quote"
)

// Mail providers accepted in MAIL_PROVIDER.
const (
	MailNone = "none"
	MailLog  = "log"
	MailHTTP = "http"
	MailSES  = "ses"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env                string        `env:"APP_ENV" envDefault:"development"`
	Port               string        `env:"PORT" envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`

	DBDSN            string        `env:"DB_DSN" envDefault:"./dev.db"`
	DBMaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"30s"`

	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	Redis    RedisConfig
	Mail     MailConfig
	Telegram TelegramConfig
	Bounds   BoundsConfig
	Company  CompanyConfig
}

type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	CatalogTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`
}

type MailConfig struct {
	Provider   string `env:"MAIL_PROVIDER" envDefault:"none"`
	APIURL     string `env:"MAIL_API_URL"`
	APIKey     string `env:"MAIL_API_KEY"`
	From       string `env:"MAIL_FROM" envDefault:"wyceny@posadzki.local"`
	AWSRegion  string `env:"AWS_REGION" envDefault:"eu-central-1"`
	MaxRetries uint64 `env:"MAIL_MAX_RETRIES" envDefault:"3"`
}

type TelegramConfig struct {
	Token   string  `env:"TELEGRAM_TOKEN"`
	ChatIDs []int64 `env:"TELEGRAM_CHAT_IDS" envSeparator:","`
}

// BoundsConfig are the dimension validation limits.
type BoundsConfig struct {
	DimensionMin float64 `env:"DIMENSION_MIN" envDefault:"1"`
	DimensionMax float64 `env:"DIMENSION_MAX" envDefault:"50"`
	AreaMin      float64 `env:"AREA_MIN" envDefault:"1"`
	AreaMax      float64 `env:"AREA_MAX" envDefault:"2500"`
}

// CompanyConfig is printed on every quote.
type CompanyConfig struct {
	Name    string `env:"COMPANY_NAME" envDefault:"Posadzki Żywiczne"`
	Phone   string `env:"COMPANY_PHONE"`
	Email   string `env:"COMPANY_EMAIL"`
	Website string `env:"COMPANY_WEBSITE"`
	Address string `env:"COMPANY_ADDRESS"`
}

// Load reads the .env file, if any, and the environment. Process variables win
// over the file.
func Load() (Config, error) {
	dotenv, err := readDotEnv(".env")
	if err != nil {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	return parse(environment(dotenv))
}

func parse(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.Mail.Provider {
	case MailNone, MailLog, MailSES:
	case MailHTTP:
		if c.Mail.APIURL == "" {
			errs = append(errs, errors.New("MAIL_API_URL is required for MAIL_PROVIDER=http"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_PROVIDER must be one of none, log, http, ses; got %q", c.Mail.Provider))
	}
	b := c.Bounds
	if !(b.DimensionMin > 0 && b.DimensionMin < b.DimensionMax) {
		errs = append(errs, fmt.Errorf("DIMENSION_MIN (%v) must be positive and below DIMENSION_MAX (%v)", b.DimensionMin, b.DimensionMax))
	}
	if !(b.AreaMin > 0 && b.AreaMin < b.AreaMax) {
		errs = append(errs, fmt.Errorf("AREA_MIN (%v) must be positive and below AREA_MAX (%v)", b.AreaMin, b.AreaMax))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "development"
}

// Warnings lists settings that are missing but not fatal.
func (c Config) Warnings() []string {
	var out []string
	if c.AdminEmail == "" {
		out = append(out, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		out = append(out, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		out = append(out, "SESSION_SECRET is not set")
	}
	return out
}

// CalculatorBounds converts the limits for the validation engine.
func (c Config) CalculatorBounds() calculator.Bounds {
	return calculator.Bounds{
		MinDimension: c.Bounds.DimensionMin,
		MaxDimension: c.Bounds.DimensionMax,
		MinArea:      c.Bounds.AreaMin,
		MaxArea:      c.Bounds.AreaMax,
	}
}

// QuoteCompany converts the company details for the quote documents.
func (c Config) QuoteCompany() quote.Company {
	return quote.Company{
		Name:    c.Company.Name,
		Phone:   c.Company.Phone,
		Email:   c.Company.Email,
		Website: c.Company.Website,
		Address: c.Company.Address,
	}
}
