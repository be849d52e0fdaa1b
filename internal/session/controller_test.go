package session

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"ytscribe/internal/catalog"
	"ytscribe/internal/services"
	"ytscribe/internal/services/clarifai"
)

const sampleVTT = "WEBVTT\nKind: captions\n\n00:00:00.000 --> 00:00:02.000\nhello there\n\n00:00:02.000 --> 00:00:04.000\nhello there\n\n00:00:04.000 --> 00:00:06.000\ngeneral kenobi\n"

type fakeFetcher struct {
	calls []string
	doc   []byte
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, videoID string) ([]byte, error) {
	f.calls = append(f.calls, videoID)
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type invocation struct {
	model  string
	prompt string
	body   string
}

type fakeModel struct {
	calls     []invocation
	responses map[string]clarifai.Completion
	err       error
}

func (m *fakeModel) Invoke(_ context.Context, model catalog.Model, prompt catalog.Prompt, body string) (clarifai.Completion, error) {
	m.calls = append(m.calls, invocation{model: model.Name, prompt: prompt.Kind, body: body})
	if m.err != nil {
		return clarifai.Completion{}, m.err
	}
	return m.responses[prompt.Kind], nil
}

func newModel() *fakeModel {
	return &fakeModel{responses: map[string]clarifai.Completion{
		catalog.FormatPrompt.Kind:        {Text: "Hello there. General Kenobi."},
		catalog.VideoMetadataPrompt.Kind: {Text: "Title: A Famous Greeting\nDescription: Two lines from a classic."},
	}}
}

func readyState(t *testing.T, c *Controller) State {
	t.Helper()
	st, err := c.SetReference(context.Background(), State{}, "https://www.youtube.com/watch?v=HbuOu9zq2UE&t=3")
	if err != nil {
		t.Fatalf("SetReference returned error: %v", err)
	}
	if st.Stage != StageTranscriptReady {
		t.Fatalf("expected transcript_ready, got %s", st.Stage)
	}
	return st
}

func TestSetReferenceFetchesAndParses(t *testing.T) {
	fetcher := &fakeFetcher{doc: []byte(sampleVTT)}
	c := NewController(fetcher, newModel())

	st := readyState(t, c)
	if len(fetcher.calls) != 1 || fetcher.calls[0] != "HbuOu9zq2UE" {
		t.Fatalf("expected fetch for resolved id, got %v", fetcher.calls)
	}
	if st.VideoID != "HbuOu9zq2UE" {
		t.Fatalf("unexpected video id %q", st.VideoID)
	}
	if got := st.TranscriptText(); got != "hello there general kenobi" {
		t.Fatalf("unexpected transcript %q", got)
	}
	actions := st.Actions()
	if !actions.Punctuate || actions.GenerateMetadata || actions.Fetch {
		t.Fatalf("unexpected actions %+v", actions)
	}
}

func TestSetReferenceSameInputIsNoop(t *testing.T) {
	fetcher := &fakeFetcher{doc: []byte(sampleVTT)}
	c := NewController(fetcher, newModel())
	st := readyState(t, c)

	again, err := c.SetReference(context.Background(), st, st.Reference)
	if err != nil {
		t.Fatalf("SetReference returned error: %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("expected no second fetch, got %d calls", len(fetcher.calls))
	}
	if again.Stage != StageTranscriptReady || again.TranscriptText() != st.TranscriptText() {
		t.Fatalf("state changed on re-entry: %+v", again)
	}
}

func TestSetReferenceChangeDiscardsDerivedFields(t *testing.T) {
	fetcher := &fakeFetcher{doc: []byte(sampleVTT)}
	model := newModel()
	c := NewController(fetcher, model)
	ctx := context.Background()

	st := readyState(t, c)
	st, err := c.Punctuate(ctx, st, "")
	if err != nil {
		t.Fatalf("Punctuate returned error: %v", err)
	}
	st, err = c.GenerateMetadata(ctx, st, "")
	if err != nil {
		t.Fatalf("GenerateMetadata returned error: %v", err)
	}

	fetcher.err = services.Wrap(services.ErrFetch, "", "fetch", "offline", nil)
	next, err := c.SetReference(ctx, st, "other123")
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if next.Reference != "other123" || next.VideoID != "other123" {
		t.Fatalf("expected new reference kept, got %+v", next)
	}
	if !next.Transcript.Empty() || next.Formatted != "" || !next.Metadata.Empty() {
		t.Fatalf("expected derived fields discarded, got %+v", next)
	}
	if next.Stage != StageError || !strings.Contains(next.Error, "offline") {
		t.Fatalf("expected error stage with description, got %s %q", next.Stage, next.Error)
	}
	if next.Model != st.Model {
		t.Fatalf("model selection should survive a reference change")
	}
}

func TestSetReferenceRetriesAfterFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	c := NewController(fetcher, newModel())
	ctx := context.Background()

	st, _ := c.SetReference(ctx, State{}, "abc")
	if st.Stage != StageError {
		t.Fatalf("expected error stage, got %s", st.Stage)
	}
	if !st.Actions().Fetch {
		t.Fatal("fetch should be retryable from error stage")
	}
	fetcher.err = nil
	fetcher.doc = []byte(sampleVTT)
	st, err := c.SetReference(ctx, st, "abc")
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if st.Stage != StageTranscriptReady || st.Error != "" {
		t.Fatalf("expected recovery, got %s %q", st.Stage, st.Error)
	}
}

func TestEmptyReferenceDoesNothing(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, newModel())
	st, err := c.SetReference(context.Background(), State{}, "   ")
	if err != nil || st.CurrentStage() != StageIdle || len(fetcher.calls) != 0 {
		t.Fatalf("unexpected result %+v %v", st, err)
	}
	if _, err := c.Fetch(context.Background(), st); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestNoCaptionsStage(t *testing.T) {
	fetcher := &fakeFetcher{doc: []byte("WEBVTT\nKind: captions\n")}
	c := NewController(fetcher, newModel())

	st, err := c.SetReference(context.Background(), State{}, "abc")
	if err != nil {
		t.Fatalf("SetReference returned error: %v", err)
	}
	if st.Stage != StageNoCaptions || st.Notice == "" {
		t.Fatalf("expected no_captions with notice, got %s %q", st.Stage, st.Notice)
	}
	if st.Actions().Punctuate {
		t.Fatal("punctuate must be disabled without captions")
	}
	if _, err := c.Punctuate(context.Background(), st, ""); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestPunctuateSendsTranscript(t *testing.T) {
	model := newModel()
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model)
	st := readyState(t, c)

	st, err := c.Punctuate(context.Background(), st, "GPT-4")
	if err != nil {
		t.Fatalf("Punctuate returned error: %v", err)
	}
	if st.Stage != StageFormatted || st.Formatted != "Hello there. General Kenobi." {
		t.Fatalf("unexpected state %s %q", st.Stage, st.Formatted)
	}
	if len(model.calls) != 1 {
		t.Fatalf("expected one model call, got %d", len(model.calls))
	}
	call := model.calls[0]
	if call.model != "GPT-4" || call.prompt != catalog.FormatPrompt.Kind || call.body != "hello there general kenobi" {
		t.Fatalf("unexpected invocation %+v", call)
	}
	if st.Model != "GPT-4" {
		t.Fatalf("expected model recorded, got %q", st.Model)
	}
	if !st.Actions().GenerateMetadata {
		t.Fatal("generate metadata should be enabled after punctuation")
	}
}

func TestPunctuateIsIdempotent(t *testing.T) {
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, newModel())
	ctx := context.Background()
	st := readyState(t, c)
	before := st
	before.Transcript = append(before.Transcript[:0:0], st.Transcript...)

	first, err := c.Punctuate(ctx, st, "")
	if err != nil {
		t.Fatalf("first Punctuate returned error: %v", err)
	}
	second, err := c.Punctuate(ctx, st, "")
	if err != nil {
		t.Fatalf("second Punctuate returned error: %v", err)
	}
	if first.Formatted != second.Formatted || first.Stage != second.Stage {
		t.Fatalf("repeated punctuation differs: %s %q vs %s %q", first.Stage, first.Formatted, second.Stage, second.Formatted)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated punctuation produced different states:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(st, before) {
		t.Fatalf("input state was modified: %+v", st)
	}
}

func TestPunctuateRemoteFailureKeepsTranscript(t *testing.T) {
	model := newModel()
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model)
	ctx := context.Background()
	st := readyState(t, c)
	st, _ = c.Punctuate(ctx, st, "")

	model.err = &clarifai.RemoteAPIError{HTTPStatus: 401, Code: 11102, Description: "Invalid API key or Invalid API key/application pair"}
	next, err := c.Punctuate(ctx, st, "")
	if !errors.Is(err, services.ErrRemoteAPI) {
		t.Fatalf("expected remote api error, got %v", err)
	}
	if next.Stage != StageTranscriptReady {
		t.Fatalf("expected transcript_ready, got %s", next.Stage)
	}
	if next.Error != "Invalid API key or Invalid API key/application pair" {
		t.Fatalf("expected provider description verbatim, got %q", next.Error)
	}
	if next.Formatted != "" || !next.Metadata.Empty() {
		t.Fatalf("expected formatted text and metadata unset, got %+v", next)
	}
	if next.TranscriptText() == "" {
		t.Fatal("transcript must survive a model failure")
	}
}

func TestPunctuateMissingCredential(t *testing.T) {
	model := newModel()
	model.err = services.Wrap(services.ErrMissingCredential, "", "resolve credentials", "failed to retrieve the Clarifai personal access token", nil)
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model)
	st := readyState(t, c)

	next, err := c.Punctuate(context.Background(), st, "")
	if !errors.Is(err, services.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
	if !strings.Contains(next.Error, "personal access token") {
		t.Fatalf("expected credential message, got %q", next.Error)
	}
}

func TestPunctuateNoContent(t *testing.T) {
	model := newModel()
	model.responses[catalog.FormatPrompt.Kind] = clarifai.Completion{NoContent: true}
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model)
	st := readyState(t, c)

	next, err := c.Punctuate(context.Background(), st, "")
	if err != nil {
		t.Fatalf("Punctuate returned error: %v", err)
	}
	if next.Stage != StageTranscriptReady || next.Notice == "" || next.Error != "" {
		t.Fatalf("expected notice without error, got %+v", next)
	}
}

func TestPunctuateUnknownModel(t *testing.T) {
	model := newModel()
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model)
	st := readyState(t, c)

	next, err := c.Punctuate(context.Background(), st, "Mistral")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(model.calls) != 0 || next.Stage != StageTranscriptReady {
		t.Fatalf("unknown model must not change state or call the model")
	}
}

func TestGenerateMetadataRequiresFormattedText(t *testing.T) {
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, newModel())
	st := readyState(t, c)
	if _, err := c.GenerateMetadata(context.Background(), st, ""); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestGenerateMetadataFlow(t *testing.T) {
	model := newModel()
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model)
	ctx := context.Background()
	st := readyState(t, c)
	st, _ = c.Punctuate(ctx, st, "")

	st, err := c.GenerateMetadata(ctx, st, "")
	if err != nil {
		t.Fatalf("GenerateMetadata returned error: %v", err)
	}
	if st.Stage != StageComplete {
		t.Fatalf("expected complete, got %s", st.Stage)
	}
	if st.Metadata.Title != "A Famous Greeting" {
		t.Fatalf("unexpected title %q", st.Metadata.Title)
	}
	last := model.calls[len(model.calls)-1]
	if last.prompt != catalog.VideoMetadataPrompt.Kind || last.body != "Hello there. General Kenobi." {
		t.Fatalf("unexpected invocation %+v", last)
	}

	model.err = &clarifai.RemoteAPIError{HTTPStatus: 200, Code: 21200, Description: "Model does not exist"}
	failed, err := c.GenerateMetadata(ctx, st, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if failed.Stage != StageFormatted || !failed.Metadata.Empty() || failed.Error != "Model does not exist" {
		t.Fatalf("unexpected failure state %+v", failed)
	}
	if failed.Formatted == "" {
		t.Fatal("formatted text must survive a metadata failure")
	}

	model.err = nil
	again, err := c.Punctuate(ctx, st, "")
	if err != nil {
		t.Fatalf("re-punctuate returned error: %v", err)
	}
	if !again.Metadata.Empty() || again.Stage != StageFormatted {
		t.Fatalf("re-punctuation must clear metadata, got %+v", again)
	}
}

func TestObserverSeesInFlightStages(t *testing.T) {
	var seen []Stage
	observer := func(_ context.Context, st State) {
		seen = append(seen, st.Stage)
	}
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, newModel(), WithObserver(observer))
	ctx := context.Background()
	st := readyState(t, c)
	st, _ = c.Punctuate(ctx, st, "")
	_, _ = c.GenerateMetadata(ctx, st, "")

	want := []Stage{StageFetching, StageFormatting, StageGeneratingMetadata}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestDefaultModelOption(t *testing.T) {
	model := newModel()
	c := NewController(&fakeFetcher{doc: []byte(sampleVTT)}, model, WithDefaultModel("Llama2-70b-chat"))
	st := readyState(t, c)
	if _, err := c.Punctuate(context.Background(), st, ""); err != nil {
		t.Fatalf("Punctuate returned error: %v", err)
	}
	if model.calls[0].model != "Llama2-70b-chat" {
		t.Fatalf("expected default model, got %q", model.calls[0].model)
	}
}

func TestDescribe(t *testing.T) {
	if Describe(nil) != "" {
		t.Fatal("nil error should describe as empty")
	}
	wrapped := services.Wrap(services.ErrTransient, "", "invoke", "", &clarifai.RemoteAPIError{Description: "quota exceeded"})
	if got := Describe(wrapped); got != "quota exceeded" {
		t.Fatalf("expected provider description, got %q", got)
	}
	if got := Describe(context.Canceled); got != "request cancelled" {
		t.Fatalf("unexpected cancel description %q", got)
	}
}
