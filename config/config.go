package config

import (
	"net/url"
	"time"

	"github.com/go-faster/errors"
)

// Session backends.
const (
	SessionFile   = "file"
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds storefront client configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	UserAgent         string
	PlaceholderImage  string
	CategoryCacheSize int

	SessionBackend string // file, memory, or redis
	SessionFile    string
	SessionPrefix  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	MetricsAddr        string
	OutputFile         string
	OutputFormat       string // csv, json, or dual
	BatchSize          int
	PipelineBufferSize int
	WhatsAppNumber     string
	Verbose            bool
}

// DefaultConfig returns defaults matching the storefront web client.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://barber-syndicate.vercel.app/api/v1",
		Timeout:            5 * time.Second,
		MaxRetries:         2,
		RetryDelay:         0,
		UserAgent:          "cosmetics-storefront/1.0",
		PlaceholderImage:   "/placeholder-image.jpg",
		CategoryCacheSize:  128,
		SessionBackend:     SessionFile,
		SessionFile:        ".storefront/session.json",
		SessionPrefix:      "storefront:session:",
		RedisAddr:          "localhost:6379",
		OutputFile:         "output/catalog.csv",
		OutputFormat:       "csv",
		BatchSize:          64,
		PipelineBufferSize: 512,
		WhatsAppNumber:     "919876543210",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid base URL")
	}
	if parsedURL.Host == "" {
		return errors.New("base URL must include a host")
	}

	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.RetryDelay < 0 {
		return errors.New("retry delay cannot be negative")
	}
	if c.UserAgent == "" {
		return errors.New("user agent cannot be empty")
	}
	if c.PlaceholderImage == "" {
		return errors.New("placeholder image cannot be empty")
	}
	if c.CategoryCacheSize <= 0 {
		return errors.New("category cache size must be positive")
	}

	switch c.SessionBackend {
	case SessionFile:
		if c.SessionFile == "" {
			return errors.New("session file cannot be empty for the file backend")
		}
	case SessionRedis:
		if c.RedisAddr == "" {
			return errors.New("redis addr cannot be empty for the redis backend")
		}
		if c.RedisDB < 0 {
			return errors.New("redis db cannot be negative")
		}
	case SessionMemory:
	default:
		return errors.New("session backend must be file, memory, or redis")
	}

	if c.OutputFile == "" {
		return errors.New("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return errors.New("output format must be csv, json, or dual")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.PipelineBufferSize <= 0 {
		return errors.New("pipeline buffer size must be positive")
	}

	return nil
}
