package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ytscribe/internal/captions"
	"ytscribe/internal/catalog"
	"ytscribe/internal/logging"
	"ytscribe/internal/metadata"
	"ytscribe/internal/services"
	"ytscribe/internal/services/clarifai"
	"ytscribe/internal/textutil"
	"ytscribe/internal/videoref"
)

const (
	noticeNoCaptions = "No auto-generated captions were found for this video."
	noticeNoContent  = "The model returned no content. Try again or pick another model."

	// Below this token similarity the punctuated text is reported as drifted.
	driftThreshold = 0.6
)

// CaptionFetcher downloads the raw caption document for a video id.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]byte, error)
}

// ModelClient sends a prompt to a hosted model.
type ModelClient interface {
	Invoke(ctx context.Context, model catalog.Model, prompt catalog.Prompt, body string) (clarifai.Completion, error)
}

// Observer receives in-flight states while an action runs.
type Observer func(ctx context.Context, st State)

// Controller drives State transitions.
type Controller struct {
	fetcher      CaptionFetcher
	client       ModelClient
	defaultModel string
	observer     Observer
	logger       *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers a callback for in-flight states.
func WithObserver(fn Observer) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "session")
		}
	}
}

// WithDefaultModel selects the model used when an action names none.
func WithDefaultModel(name string) Option {
	return func(c *Controller) {
		if name = strings.TrimSpace(name); name != "" {
			c.defaultModel = name
		}
	}
}

// NewController constructs a controller around the fetcher and model client.
func NewController(fetcher CaptionFetcher, client ModelClient, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		client:  client,
		logger:  logging.NewComponentLogger(logging.NewNop(), "session"),
	}
	if models := catalog.Models(); len(models) > 0 {
		c.defaultModel = models[0].Name
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultModel returns the model name used when none is given.
func (c *Controller) DefaultModel() string {
	return c.defaultModel
}

// SetReference records the user's video reference. A different reference
// discards every derived field; a reference without a transcript triggers the
// fetch. Re-entering the reference that already holds a transcript changes
// nothing.
func (c *Controller) SetReference(ctx context.Context, st State, input string) (State, error) {
	input = strings.TrimSpace(input)
	if input != st.Reference {
		st = State{Reference: input, Model: st.Model, Stage: StageIdle}
	}
	if st.Reference == "" || !st.Transcript.Empty() {
		return st, nil
	}
	return c.Fetch(ctx, st)
}

// Fetch resolves the reference, downloads the captions, and parses them.
func (c *Controller) Fetch(ctx context.Context, st State) (State, error) {
	if !st.Actions().Fetch {
		return st, invalidTransition(st, "fetch", "a reference without a transcript is required")
	}
	st.VideoID = videoref.Resolve(st.Reference)
	st.Stage = StageFetching
	st.Error = ""
	st.Notice = ""
	ctx = services.WithStage(ctx, string(StageFetching))
	logger := logging.WithContext(ctx, c.logger).With(logging.Video(st.VideoID))
	c.observe(ctx, st)

	if c.fetcher == nil {
		err := services.Wrap(services.ErrConfiguration, string(StageFetching), "fetch captions", "caption fetcher unavailable", nil)
		return c.fail(logger, st, StageError, "caption fetch failed", err)
	}

	started := time.Now()
	doc, err := c.fetcher.Fetch(ctx, st.VideoID)
	if err != nil {
		return c.fail(logger, st, StageError, "caption fetch failed", err)
	}

	st.Transcript = captions.Parse(doc)
	if st.Transcript.Empty() {
		st.Stage = StageNoCaptions
		st.Notice = noticeNoCaptions
		logger.Info("caption document held no transcript text",
			logging.Int("bytes", len(doc)),
			logging.Duration("elapsed", time.Since(started)),
		)
		return st, nil
	}
	st.Stage = StageTranscriptReady
	logger.Info("transcript ready",
		logging.Int("lines", st.Transcript.Len()),
		logging.Int("words", textutil.WordCount(st.Transcript.Text())),
		logging.Duration("elapsed", time.Since(started)),
	)
	return st, nil
}

// Punctuate asks the model to restore punctuation and paragraphs in the
// transcript. Any previously generated title and description is discarded.
func (c *Controller) Punctuate(ctx context.Context, st State, modelName string) (State, error) {
	if !st.Actions().Punctuate {
		return st, invalidTransition(st, "punctuate", "a transcript is required")
	}
	model, err := c.resolveModel(modelName)
	if err != nil {
		return st, err
	}
	st.Model = model.Name
	st.Formatted = ""
	st.Metadata = metadata.Metadata{}
	st.Error = ""
	st.Notice = ""
	st.Stage = StageFormatting
	ctx = services.WithStage(ctx, string(StageFormatting))
	logger := logging.WithContext(ctx, c.logger).With(
		logging.Video(st.VideoID),
		logging.Model(model.Name),
	)
	c.observe(ctx, st)

	transcript := st.Transcript.Text()
	completion, err := c.invoke(ctx, model, catalog.FormatPrompt, transcript)
	if err != nil {
		return c.fail(logger, st, StageTranscriptReady, "punctuation request failed", err)
	}
	if completion.NoContent {
		st.Stage = StageTranscriptReady
		st.Notice = noticeNoContent
		logger.Info("model returned no content")
		return st, nil
	}

	st.Formatted = completion.Text
	st.Stage = StageFormatted
	similarity := textutil.TextSimilarity(transcript, st.Formatted)
	if similarity < driftThreshold {
		logging.WarnWithContext(logger, "punctuated text diverges from transcript", "punctuation_drift",
			logging.Similarity(similarity),
			logging.String("formatted_excerpt", textutil.Excerpt(st.Formatted, 120)),
			logging.String(logging.FieldErrorHint, "compare the punctuated text with the transcript or try another model"),
			logging.String(logging.FieldImpact, "punctuated text may contain rewritten content"),
		)
	}
	logger.Info("transcript punctuated",
		logging.Int("words", textutil.WordCount(st.Formatted)),
	)
	return st, nil
}

// GenerateMetadata asks the model for a title and description of the
// punctuated text.
func (c *Controller) GenerateMetadata(ctx context.Context, st State, modelName string) (State, error) {
	if !st.Actions().GenerateMetadata {
		return st, invalidTransition(st, "generate metadata", "punctuated text is required")
	}
	model, err := c.resolveModel(modelName)
	if err != nil {
		return st, err
	}
	st.Model = model.Name
	st.Metadata = metadata.Metadata{}
	st.Error = ""
	st.Notice = ""
	st.Stage = StageGeneratingMetadata
	ctx = services.WithStage(ctx, string(StageGeneratingMetadata))
	logger := logging.WithContext(ctx, c.logger).With(
		logging.Video(st.VideoID),
		logging.Model(model.Name),
	)
	c.observe(ctx, st)

	completion, err := c.invoke(ctx, model, catalog.VideoMetadataPrompt, st.Formatted)
	if err != nil {
		return c.fail(logger, st, StageFormatted, "metadata request failed", err)
	}
	if completion.NoContent {
		st.Stage = StageFormatted
		st.Notice = noticeNoContent
		logger.Info("model returned no content")
		return st, nil
	}
	st.Metadata = metadata.Parse(completion.Text)
	st.Stage = StageComplete
	logger.Info("title and description generated",
		logging.Bool("title_found", st.Metadata.Title != ""),
	)
	return st, nil
}

func (c *Controller) invoke(ctx context.Context, model catalog.Model, prompt catalog.Prompt, body string) (clarifai.Completion, error) {
	if c.client == nil {
		return clarifai.Completion{}, services.Wrap(services.ErrConfiguration, "", "invoke model", "model client unavailable", nil)
	}
	return c.client.Invoke(ctx, model, prompt, body)
}

func (c *Controller) resolveModel(name string) (catalog.Model, error) {
	if strings.TrimSpace(name) == "" {
		name = c.defaultModel
	}
	model, ok := catalog.Lookup(name)
	if !ok {
		return catalog.Model{}, services.Wrap(services.ErrValidation, "", "select model",
			fmt.Sprintf("unknown model %q", name), nil)
	}
	return model, nil
}

func (c *Controller) fail(logger *slog.Logger, st State, stage Stage, msg string, err error) (State, error) {
	st.Stage = stage
	st.Error = Describe(err)
	event := "action_failed"
	if services.IsUserFacing(err) {
		event = "action_rejected"
	}
	logging.WarnWithContext(logger, msg, event,
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(err)),
	)
	return st, err
}

func (c *Controller) observe(ctx context.Context, st State) {
	if c.observer != nil {
		c.observer(ctx, st)
	}
}

// Describe renders err for display. Remote API failures show the provider's
// own description.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if remote, ok := clarifai.AsRemoteAPIError(err); ok && strings.TrimSpace(remote.Description) != "" {
		return remote.Description
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return err.Error()
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrMissingCredential):
		return "set the Clarifai personal access token"
	case errors.Is(err, services.ErrFetch):
		return "check the video reference and that yt-dlp is installed"
	case errors.Is(err, services.ErrRemoteAPI):
		return "check the Clarifai model and token"
	default:
		return "check logs for details"
	}
}

func invalidTransition(st State, action, requirement string) error {
	return services.Wrap(services.ErrInvalidTransition, string(st.CurrentStage()), action, requirement, nil)
}
