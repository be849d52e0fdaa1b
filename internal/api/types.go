package api

import "ytscribe/internal/session"

// ModelInfo is the transport representation of a catalog entry.
type ModelInfo struct {
	Name      string `json:"name"`
	UserID    string `json:"userId"`
	AppID     string `json:"appId"`
	ModelID   string `json:"modelId"`
	VersionID string `json:"versionId"`
	Default   bool   `json:"default,omitempty"`
}

// ModelListResponse wraps the model catalog.
type ModelListResponse struct {
	Models []ModelInfo `json:"models"`
}

// MetadataView is the generated title and description.
type MetadataView struct {
	Raw         string `json:"raw"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// SessionView is the transport representation of a session state.
type SessionView struct {
	ID         string          `json:"id"`
	Reference  string          `json:"reference"`
	VideoID    string          `json:"videoId,omitempty"`
	EmbedURL   string          `json:"embedUrl,omitempty"`
	Model      string          `json:"model,omitempty"`
	Stage      string          `json:"stage"`
	InFlight   bool            `json:"inFlight"`
	Transcript string          `json:"transcript,omitempty"`
	Formatted  string          `json:"formatted,omitempty"`
	Metadata   *MetadataView   `json:"metadata,omitempty"`
	Error      string          `json:"error,omitempty"`
	Notice     string          `json:"notice,omitempty"`
	Actions    session.Actions `json:"actions"`
}

// ReferenceRequest sets the video reference of a session.
type ReferenceRequest struct {
	Reference string `json:"reference"`
}

// ActionRequest selects the model for a punctuation or metadata action.
type ActionRequest struct {
	Model string `json:"model"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// ErrorResponse carries a protocol-level failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
