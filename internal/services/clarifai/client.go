package clarifai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ytscribe/internal/catalog"
	"ytscribe/internal/credentials"
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

const (
	defaultBaseURL     = "https://api.clarifai.com"
	defaultHTTPTimeout = 120 * time.Second
	statusSuccess      = 10000
	maxErrorSnippet    = 512
)

// Config captures the runtime settings required to talk to Clarifai.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// TokenSource supplies the personal access token for each call.
type TokenSource interface {
	Resolve() (credentials.Credential, error)
}

// Completion is the text a model produced. NoContent is set when the call
// succeeded but the first output carried no text.
type Completion struct {
	Text      string
	NoContent bool
}

// Client wraps the Clarifai v2 model outputs endpoint.
type Client struct {
	cfg        Config
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a Clarifai client. Tokens are resolved on every call.
func NewClient(cfg Config, tokens TokenSource, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	client.logger = logging.NewComponentLogger(client.logger, "clarifai")
	return client
}

// RemoteAPIError reports a non-success answer from the inference API.
// Description carries the provider's own wording and is meant to be shown to
// the user verbatim.
type RemoteAPIError struct {
	HTTPStatus  int
	Code        int
	Description string
	Details     string
	RequestID   string
}

func (e *RemoteAPIError) Error() string {
	msg := fmt.Sprintf("clarifai: http %d: status %d: %s", e.HTTPStatus, e.Code, e.Description)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// Unwrap lets callers match the error with errors.Is(err, services.ErrRemoteAPI).
func (e *RemoteAPIError) Unwrap() error {
	return services.ErrRemoteAPI
}

// Invoke sends prompt and body to model and returns the first output text.
// Exactly one HTTP request is made; failures are not retried.
func (c *Client) Invoke(ctx context.Context, model catalog.Model, prompt catalog.Prompt, body string) (Completion, error) {
	if c.tokens == nil {
		return Completion{}, services.Wrap(services.ErrMissingCredential, "", "clarifai invoke", "no credential source configured", nil)
	}
	cred, err := c.tokens.Resolve()
	if err != nil {
		return Completion{}, err
	}

	payload := outputsRequest{
		UserAppID: userAppID{UserID: model.UserID, AppID: model.AppID},
		Inputs: []input{{
			Data: inputData{Text: textData{Raw: catalog.BuildRequest(prompt, body)}},
		}},
	}

	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	resp, err := c.postOutputs(ctx, model, cred.Token, payload)
	if err != nil {
		logger.Debug("clarifai request failed",
			logging.Model(model.Name),
			logging.Prompt(prompt.Kind),
			logging.Elapsed(started),
			logging.Error(err),
		)
		return Completion{}, err
	}

	text := ""
	if len(resp.Outputs) > 0 && resp.Outputs[0].Data.Text != nil {
		text = strings.TrimSpace(resp.Outputs[0].Data.Text.Raw)
	}
	logger.Debug("clarifai request complete",
		logging.Model(model.Name),
		logging.Prompt(prompt.Kind),
		logging.String("credential_source", string(cred.Source)),
		logging.Int("output_chars", len(text)),
		logging.Elapsed(started),
	)
	if text == "" {
		return Completion{NoContent: true}, nil
	}
	return Completion{Text: text}, nil
}

func (c *Client) endpoint(model catalog.Model) (string, error) {
	return url.JoinPath(c.cfg.BaseURL, "v2", "users", model.UserID, "apps", model.AppID,
		"models", model.ModelID, "versions", model.VersionID, "outputs")
}

func (c *Client) postOutputs(ctx context.Context, model catalog.Model, token string, payload outputsRequest) (outputsResponse, error) {
	var decoded outputsResponse
	endpoint, err := c.endpoint(model)
	if err != nil {
		return decoded, fmt.Errorf("clarifai request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return decoded, fmt.Errorf("clarifai request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return decoded, fmt.Errorf("clarifai request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decoded, services.Wrap(services.ErrTransient, "", "clarifai request",
			fmt.Sprintf("http error (timeout=%s)", c.httpClient.Timeout), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decoded, fmt.Errorf("clarifai request: read body: %w", err)
	}

	decodeErr := json.Unmarshal(body, &decoded)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return decoded, remoteError(resp.StatusCode, decoded, decodeErr, body)
	}
	if decodeErr != nil {
		return decoded, fmt.Errorf("clarifai request: decode response: %w", decodeErr)
	}
	if decoded.Status.Code != statusSuccess {
		return decoded, remoteError(resp.StatusCode, decoded, nil, body)
	}
	return decoded, nil
}

func remoteError(httpStatus int, decoded outputsResponse, decodeErr error, body []byte) *RemoteAPIError {
	apiErr := &RemoteAPIError{HTTPStatus: httpStatus}
	if decodeErr == nil {
		apiErr.Code = decoded.Status.Code
		apiErr.Description = strings.TrimSpace(decoded.Status.Description)
		apiErr.Details = strings.TrimSpace(decoded.Status.Details)
		apiErr.RequestID = strings.TrimSpace(decoded.Status.ReqID)
	}
	if apiErr.Description == "" {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		apiErr.Description = strings.TrimSpace(http.StatusText(httpStatus) + " " + snippet)
	}
	return apiErr
}

// AsRemoteAPIError extracts a RemoteAPIError from err.
func AsRemoteAPIError(err error) (*RemoteAPIError, bool) {
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
