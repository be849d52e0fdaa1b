package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytscribe/internal/config"
	"ytscribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	clarifai   *fakeClarifai
}

type fakeClarifai struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []string
	authKeys []string
	failWith string
}

func newFakeClarifai(t *testing.T) *fakeClarifai {
	t.Helper()
	fake := &fakeClarifai{}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeClarifai) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var payload struct {
		Inputs []struct {
			Data struct {
				Text struct {
					Raw string `json:"raw"`
				} `json:"text"`
			} `json:"data"`
		} `json:"inputs"`
	}
	_ = json.Unmarshal(body, &payload)
	raw := ""
	if len(payload.Inputs) > 0 {
		raw = payload.Inputs[0].Data.Text.Raw
	}

	f.mu.Lock()
	f.requests = append(f.requests, raw)
	f.authKeys = append(f.authKeys, r.Header.Get("Authorization"))
	failWith := f.failWith
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failWith != "" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":{"code":11102,"description":"`+failWith+`"}}`)
		return
	}
	text := "Hello there. General Kenobi."
	if strings.Contains(raw, "title and video description") {
		text = "Title: Greetings From Afar\nDescription: A short exchange of greetings."
	}
	resp := map[string]any{
		"status":  map[string]any{"code": 10000, "description": "Ok"},
		"outputs": []any{map[string]any{"data": map[string]any{"text": map[string]any{"raw": text}}}},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeClarifai) fail(description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = description
}

func (f *fakeClarifai) snapshot() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...), append([]string(nil), f.authKeys...)
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CLARIFAI_BASE_URL", "")
	t.Setenv("YTSCRIBE_BIND", "")

	fake := newFakeClarifai(t)
	all := append([]testsupport.ConfigOption{
		testsupport.WithCaptionStub(testsupport.VTT("hello there", "hello there", "general kenobi")),
		testsupport.WithClarifaiURL(fake.server.URL),
	}, opts...)
	cfg := testsupport.NewConfig(t, all...)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, clarifai: fake}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
