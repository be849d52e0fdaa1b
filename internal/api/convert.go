package api

import (
	"ytscribe/internal/catalog"
	"ytscribe/internal/session"
	"ytscribe/internal/videoref"
)

// FromState converts a session state into its transport form.
func FromState(id string, st session.State) SessionView {
	view := SessionView{
		ID:         id,
		Reference:  st.Reference,
		VideoID:    st.VideoID,
		Model:      st.Model,
		Stage:      string(st.CurrentStage()),
		InFlight:   st.InFlight(),
		Transcript: st.TranscriptText(),
		Formatted:  st.Formatted,
		Error:      st.Error,
		Notice:     st.Notice,
		Actions:    st.Actions(),
	}
	if view.VideoID == "" && st.Reference != "" {
		view.VideoID = videoref.Resolve(st.Reference)
	}
	if view.VideoID != "" {
		view.EmbedURL = videoref.EmbedURL(view.VideoID)
	}
	if !st.Metadata.Empty() {
		view.Metadata = &MetadataView{
			Raw:         st.Metadata.Raw,
			Title:       st.Metadata.Title,
			Description: st.Metadata.Description,
		}
	}
	return view
}

// ModelInfos lists the catalog, flagging defaultModel.
func ModelInfos(defaultModel string) []ModelInfo {
	models := catalog.Models()
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, ModelInfo{
			Name:      m.Name,
			UserID:    m.UserID,
			AppID:     m.AppID,
			ModelID:   m.ModelID,
			VersionID: m.VersionID,
			Default:   m.Name == defaultModel,
		})
	}
	return out
}
