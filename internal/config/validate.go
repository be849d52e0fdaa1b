package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"ytscribe/internal/catalog"
	"ytscribe/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClarifai(); err != nil {
		return err
	}
	if err := c.validateFetcher(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClarifai() error {
	parsed, err := url.Parse(c.Clarifai.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("clarifai.base_url must be an absolute URL, got %q", c.Clarifai.BaseURL)
	}
	if c.Clarifai.TimeoutSeconds < 0 {
		return errors.New("clarifai.timeout_seconds must be positive")
	}
	if _, ok := catalog.Lookup(c.Clarifai.DefaultModel); !ok {
		return fmt.Errorf("clarifai.default_model %q is not a known model (one of: %s)",
			c.Clarifai.DefaultModel, strings.Join(catalog.Names(), ", "))
	}
	return nil
}

func (c *Config) validateFetcher() error {
	if c.Fetcher.SleepSubtitlesSeconds < 0 {
		return errors.New("fetcher.sleep_subtitles_seconds must be >= 0")
	}
	if c.Fetcher.TimeoutSeconds < 0 {
		return errors.New("fetcher.timeout_seconds must be positive")
	}
	if language.CaptionCode(c.Fetcher.Language) != c.Fetcher.Language {
		return fmt.Errorf("fetcher.language must be a single language code, got %q", c.Fetcher.Language)
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind: %w", err)
	}
	if c.Server.SessionTTLMinutes < 0 {
		return errors.New("server.session_ttl_minutes must be positive")
	}
	return nil
}
