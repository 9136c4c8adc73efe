package config

import (
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "STOREFRONT_"

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, errors.Wrap(err, key)
	}
	return n, true, nil
}

// EnvDuration parses key as a time.Duration ("5s", "250ms").
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, errors.Wrap(err, key)
	}
	return d, true, nil
}

// EnvBool parses key as a boolean.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, errors.Wrap(err, key)
	}
	return b, true, nil
}

// Load reads optional dotenv files, then layers STOREFRONT_* variables over
// the defaults. Variables already present in the environment win over the
// file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "load %s", file)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"BASE_URL":          &c.BaseURL,
		"USER_AGENT":        &c.UserAgent,
		"PLACEHOLDER_IMAGE": &c.PlaceholderImage,
		"SESSION_BACKEND":   &c.SessionBackend,
		"SESSION_FILE":      &c.SessionFile,
		"SESSION_PREFIX":    &c.SessionPrefix,
		"REDIS_ADDR":        &c.RedisAddr,
		"REDIS_PASSWORD":    &c.RedisPassword,
		"METRICS_ADDR":      &c.MetricsAddr,
		"OUTPUT":            &c.OutputFile,
		"FORMAT":            &c.OutputFormat,
		"WHATSAPP_NUMBER":   &c.WhatsAppNumber,
	}
	for key, dst := range strs {
		if value, ok := EnvString(EnvPrefix + key); ok {
			*dst = value
		}
	}

	ints := map[string]*int{
		"MAX_RETRIES":          &c.MaxRetries,
		"CATEGORY_CACHE_SIZE":  &c.CategoryCacheSize,
		"REDIS_DB":             &c.RedisDB,
		"BATCH_SIZE":           &c.BatchSize,
		"PIPELINE_BUFFER_SIZE": &c.PipelineBufferSize,
	}
	for key, dst := range ints {
		value, ok, err := EnvInt(EnvPrefix + key)
		if err != nil {
			return errors.Wrapf(err, "invalid %s%s", EnvPrefix, key)
		}
		if ok {
			*dst = value
		}
	}

	durations := map[string]*time.Duration{
		"TIMEOUT":     &c.Timeout,
		"RETRY_DELAY": &c.RetryDelay,
	}
	for key, dst := range durations {
		value, ok, err := EnvDuration(EnvPrefix + key)
		if err != nil {
			return errors.Wrapf(err, "invalid %s%s", EnvPrefix, key)
		}
		if ok {
			*dst = value
		}
	}

	verbose, ok, err := EnvBool(EnvPrefix + "VERBOSE")
	if err != nil {
		return errors.Wrapf(err, "invalid %sVERBOSE", EnvPrefix)
	}
	if ok {
		c.Verbose = verbose
	}
	return nil
}
