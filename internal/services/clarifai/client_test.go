package clarifai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ytscribe/internal/catalog"
	"ytscribe/internal/credentials"
	"ytscribe/internal/services"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Resolve() (credentials.Credential, error) {
	if s.err != nil {
		return credentials.Credential{}, s.err
	}
	return credentials.Credential{Token: s.token, Source: credentials.SourceEnvironment}, nil
}

func mustModel(t *testing.T, name string) catalog.Model {
	t.Helper()
	m, ok := catalog.Lookup(name)
	if !ok {
		t.Fatalf("unknown model %q", name)
	}
	return m
}

func successPayload(text string) map[string]any {
	return map[string]any{
		"status": map[string]any{"code": 10000, "description": "Ok"},
		"outputs": []any{
			map[string]any{
				"status": map[string]any{"code": 10000, "description": "Ok"},
				"data":   map[string]any{"text": map[string]any{"raw": text}},
			},
		},
	}
}

func TestInvokeSendsExpectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		wantPath := "/v2/users/openai/apps/chat-completion/models/GPT-4/versions/ad16eda6ac054796bf9f348ab6733c72/outputs"
		if r.URL.Path != wantPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Key pat-123" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var req struct {
			UserAppID struct {
				UserID string `json:"user_id"`
				AppID  string `json:"app_id"`
			} `json:"user_app_id"`
			Inputs []struct {
				Data struct {
					Text struct {
						Raw string `json:"raw"`
					} `json:"text"`
				} `json:"data"`
			} `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.UserAppID.UserID != "openai" || req.UserAppID.AppID != "chat-completion" {
			t.Fatalf("unexpected user_app_id: %+v", req.UserAppID)
		}
		if len(req.Inputs) != 1 {
			t.Fatalf("expected one input, got %d", len(req.Inputs))
		}
		wantRaw := catalog.FormatPrompt.Prefix + "\nhello there world\n"
		if req.Inputs[0].Data.Text.Raw != wantRaw {
			t.Fatalf("unexpected raw payload %q", req.Inputs[0].Data.Text.Raw)
		}
		if err := json.NewEncoder(w).Encode(successPayload("  Hello there, world.  ")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/"}, staticTokens{token: "pat-123"})
	completion, err := client.Invoke(context.Background(), mustModel(t, "GPT-4"), catalog.FormatPrompt, "hello there world")
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if completion.NoContent || completion.Text != "Hello there, world." {
		t.Fatalf("unexpected completion: %+v", completion)
	}
}

func TestInvokeMissingCredentialMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	missing := services.Wrap(services.ErrMissingCredential, "", "resolve credentials", "none", nil)
	client := NewClient(Config{BaseURL: server.URL}, staticTokens{err: missing})
	_, err := client.Invoke(context.Background(), mustModel(t, "Llama2-7b-chat"), catalog.FormatPrompt, "text")
	if !errors.Is(err, services.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no HTTP call, got %d", calls.Load())
	}

	client = NewClient(Config{BaseURL: server.URL}, nil)
	if _, err := client.Invoke(context.Background(), mustModel(t, "Llama2-7b-chat"), catalog.FormatPrompt, "text"); !errors.Is(err, services.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential for nil source, got %v", err)
	}
}

func TestInvokeStatusFailureIsRemoteAPIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"code": 21200, "description": "Model does not exist", "req_id": "abc"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, staticTokens{token: "pat"})
	_, err := client.Invoke(context.Background(), mustModel(t, "GPT-3"), catalog.VideoMetadataPrompt, "script")
	apiErr, ok := AsRemoteAPIError(err)
	if !ok {
		t.Fatalf("expected RemoteAPIError, got %v", err)
	}
	if apiErr.Code != 21200 || apiErr.Description != "Model does not exist" || apiErr.HTTPStatus != http.StatusOK || apiErr.RequestID != "abc" {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
	if !errors.Is(err, services.ErrRemoteAPI) {
		t.Fatal("expected error to match ErrRemoteAPI")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one request, got %d", calls.Load())
	}
}

func TestInvokeHTTPFailureIsRemoteAPIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"code": 11102, "description": "Invalid request", "details": "API key not found"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, staticTokens{token: "bad"})
	_, err := client.Invoke(context.Background(), mustModel(t, "GPT-3"), catalog.FormatPrompt, "text")
	apiErr, ok := AsRemoteAPIError(err)
	if !ok {
		t.Fatalf("expected RemoteAPIError, got %v", err)
	}
	if apiErr.HTTPStatus != http.StatusUnauthorized || apiErr.Code != 11102 || apiErr.Description != "Invalid request" {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "API key not found") {
		t.Fatalf("expected details in error string, got %q", err.Error())
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no retries, got %d calls", calls.Load())
	}
}

func TestInvokeNonJSONFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, staticTokens{token: "pat"})
	_, err := client.Invoke(context.Background(), mustModel(t, "GPT-3"), catalog.FormatPrompt, "text")
	apiErr, ok := AsRemoteAPIError(err)
	if !ok {
		t.Fatalf("expected RemoteAPIError, got %v", err)
	}
	if !strings.Contains(apiErr.Description, "upstream exploded") {
		t.Fatalf("expected body snippet in description, got %q", apiErr.Description)
	}
}

func TestInvokeEmptyOutputIsNoContent(t *testing.T) {
	for name, payload := range map[string]any{
		"blank text": successPayload("   "),
		"no outputs": map[string]any{"status": map[string]any{"code": 10000}},
		"no text":    map[string]any{"status": map[string]any{"code": 10000}, "outputs": []any{map[string]any{"data": map[string]any{}}}},
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(payload)
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL}, staticTokens{token: "pat"})
			completion, err := client.Invoke(context.Background(), mustModel(t, "GPT-4"), catalog.FormatPrompt, "text")
			if err != nil {
				t.Fatalf("Invoke returned error: %v", err)
			}
			if !completion.NoContent || completion.Text != "" {
				t.Fatalf("expected no-content completion, got %+v", completion)
			}
		})
	}
}

func TestInvokeHonoursContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(Config{BaseURL: server.URL}, staticTokens{token: "pat"})
	if _, err := client.Invoke(ctx, mustModel(t, "GPT-4"), catalog.FormatPrompt, "text"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{}, nil)
	if client.cfg.BaseURL != defaultBaseURL {
		t.Fatalf("unexpected base url %q", client.cfg.BaseURL)
	}
	if client.httpClient.Timeout != defaultHTTPTimeout {
		t.Fatalf("unexpected timeout %s", client.httpClient.Timeout)
	}
}
