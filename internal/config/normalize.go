package config

import (
	"fmt"
	"os"
	"strings"

	"ytscribe/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCredentials(); err != nil {
		return err
	}
	c.normalizeClarifai()
	c.normalizeFetcher()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir()
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCredentials() error {
	var err error
	c.Credentials.EnvVar = strings.TrimSpace(c.Credentials.EnvVar)
	if c.Credentials.EnvVar == "" {
		c.Credentials.EnvVar = defaultCredentialEnvVar
	}
	if c.Credentials.SecretsFile, err = expandPath(strings.TrimSpace(c.Credentials.SecretsFile)); err != nil {
		return fmt.Errorf("credentials.secrets_file: %w", err)
	}
	if c.Credentials.DotenvFile, err = expandPath(strings.TrimSpace(c.Credentials.DotenvFile)); err != nil {
		return fmt.Errorf("credentials.dotenv_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeClarifai() {
	if value, ok := os.LookupEnv("CLARIFAI_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Clarifai.BaseURL = value
	}
	c.Clarifai.BaseURL = strings.TrimRight(strings.TrimSpace(c.Clarifai.BaseURL), "/")
	if c.Clarifai.BaseURL == "" {
		c.Clarifai.BaseURL = defaultClarifaiBaseURL
	}
	c.Clarifai.DefaultModel = strings.TrimSpace(c.Clarifai.DefaultModel)
	if c.Clarifai.DefaultModel == "" {
		c.Clarifai.DefaultModel = defaultModel
	}
	if c.Clarifai.TimeoutSeconds == 0 {
		c.Clarifai.TimeoutSeconds = defaultClarifaiTimeout
	}
}

func (c *Config) normalizeFetcher() {
	c.Fetcher.Binary = strings.TrimSpace(c.Fetcher.Binary)
	if c.Fetcher.Binary == "" {
		c.Fetcher.Binary = defaultFetcherBinary
	}
	raw := strings.TrimSpace(c.Fetcher.Language)
	if code := language.CaptionCode(raw); code != "" {
		raw = code
	}
	c.Fetcher.Language = raw
	if c.Fetcher.Language == "" {
		c.Fetcher.Language = defaultFetcherLanguage
	}
	if c.Fetcher.TimeoutSeconds == 0 {
		c.Fetcher.TimeoutSeconds = defaultFetcherTimeout
	}
}

func (c *Config) normalizeServer() {
	if value, ok := os.LookupEnv("YTSCRIBE_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = value
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.SessionTTLMinutes == 0 {
		c.Server.SessionTTLMinutes = defaultSessionTTLMinutes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
