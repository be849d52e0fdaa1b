package session

import (
	"ytscribe/internal/captions"
	"ytscribe/internal/metadata"
)

// Stage names the position of a session in the flow.
type Stage string

const (
	StageIdle               Stage = "idle"
	StageFetching           Stage = "fetching"
	StageTranscriptReady    Stage = "transcript_ready"
	StageFormatting         Stage = "formatting"
	StageFormatted          Stage = "formatted"
	StageGeneratingMetadata Stage = "generating_metadata"
	StageComplete           Stage = "complete"
	StageError              Stage = "error"
	// StageNoCaptions means the fetch succeeded but produced no transcript text.
	StageNoCaptions Stage = "no_captions"
)

// State is the per-session view of the flow. The zero value is an idle session.
type State struct {
	Reference  string
	VideoID    string
	Model      string
	Transcript captions.Transcript
	Formatted  string
	Metadata   metadata.Metadata
	Stage      Stage
	Error      string
	Notice     string
}

// Actions lists what the current stage enables.
type Actions struct {
	Fetch            bool `json:"fetch"`
	Punctuate        bool `json:"punctuate"`
	GenerateMetadata bool `json:"generateMetadata"`
}

// CurrentStage returns the stage, treating the zero value as idle.
func (s State) CurrentStage() Stage {
	if s.Stage == "" {
		return StageIdle
	}
	return s.Stage
}

// Actions reports which operations are allowed from this state.
func (s State) Actions() Actions {
	var a Actions
	switch s.CurrentStage() {
	case StageIdle, StageError, StageNoCaptions:
		a.Fetch = s.Reference != "" && s.Transcript.Empty()
	case StageTranscriptReady:
		a.Punctuate = !s.Transcript.Empty()
	case StageFormatted, StageComplete:
		a.Punctuate = !s.Transcript.Empty()
		a.GenerateMetadata = s.Formatted != ""
	}
	return a
}

// InFlight reports whether the stage marks a running action.
func (s State) InFlight() bool {
	switch s.CurrentStage() {
	case StageFetching, StageFormatting, StageGeneratingMetadata:
		return true
	default:
		return false
	}
}

// TranscriptText returns the single-line transcript.
func (s State) TranscriptText() string {
	return s.Transcript.Text()
}
