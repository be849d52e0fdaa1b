package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"ytscribe/internal/config"
	"ytscribe/internal/services"
)

// Source names where a token was found.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceDotenv      Source = "dotenv"
	SourceSecretsFile Source = "secrets_file"
)

// Credential is a resolved personal access token.
type Credential struct {
	Token  string
	Source Source
}

// Resolver looks up the personal access token on every call so that edits to
// the environment or the secrets file take effect without a restart.
type Resolver struct {
	key         string
	dotenvFile  string
	secretsFile string
	lookupEnv   func(string) (string, bool)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.lookupEnv = fn
		}
	}
}

// NewResolver builds a resolver from the [credentials] config section.
func NewResolver(cfg config.Credentials, opts ...Option) *Resolver {
	key := strings.TrimSpace(cfg.EnvVar)
	if key == "" {
		key = "CLARIFAI_PAT"
	}
	r := &Resolver{
		key:         key,
		dotenvFile:  strings.TrimSpace(cfg.DotenvFile),
		secretsFile: strings.TrimSpace(cfg.SecretsFile),
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the variable name the resolver looks for.
func (r *Resolver) Key() string {
	return r.key
}

// Resolve returns the token from the process environment, then the .env file,
// then the TOML secrets file. A missing token yields ErrMissingCredential.
func (r *Resolver) Resolve() (Credential, error) {
	if value, ok := r.lookupEnv(r.key); ok && strings.TrimSpace(value) != "" {
		return Credential{Token: strings.TrimSpace(value), Source: SourceEnvironment}, nil
	}

	if token, err := r.fromDotenv(); err != nil {
		return Credential{}, err
	} else if token != "" {
		return Credential{Token: token, Source: SourceDotenv}, nil
	}

	if token, err := r.fromSecretsFile(); err != nil {
		return Credential{}, err
	} else if token != "" {
		return Credential{Token: token, Source: SourceSecretsFile}, nil
	}

	hint := fmt.Sprintf("set %s in the environment", r.key)
	if r.secretsFile != "" {
		hint += fmt.Sprintf(" or add %s to %s", r.key, r.secretsFile)
	}
	return Credential{}, services.Wrap(services.ErrMissingCredential, "", "resolve credentials",
		"failed to retrieve the Clarifai personal access token; "+hint, nil)
}

func (r *Resolver) fromDotenv() (string, error) {
	if r.dotenvFile == "" {
		return "", nil
	}
	values, err := godotenv.Read(r.dotenvFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", services.Wrap(services.ErrConfiguration, "", "read dotenv", r.dotenvFile, err)
	}
	return strings.TrimSpace(values[r.key]), nil
}

func (r *Resolver) fromSecretsFile() (string, error) {
	if r.secretsFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(r.secretsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", services.Wrap(services.ErrConfiguration, "", "read secrets", r.secretsFile, err)
	}
	var secrets map[string]any
	if err := toml.Unmarshal(data, &secrets); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "", "parse secrets", r.secretsFile, err)
	}
	raw, ok := secrets[r.key]
	if !ok {
		return "", nil
	}
	token, ok := raw.(string)
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, "", "parse secrets",
			fmt.Sprintf("%s in %s must be a string", r.key, r.secretsFile), nil)
	}
	return strings.TrimSpace(token), nil
}
