package catalog

import "strings"

// Model identifies one deployed model version on the inference platform.
type Model struct {
	Name      string
	UserID    string
	AppID     string
	ModelID   string
	VersionID string
}

var models = []Model{
	{Name: "Llama2-7b-chat", UserID: "meta", AppID: "Llama-2", ModelID: "Llama2-7b-chat", VersionID: "e52af5d6bc22445aa7a6761f327f7129"},
	{Name: "Llama2-13b-chat", UserID: "meta", AppID: "Llama-2", ModelID: "llama2-13b-chat", VersionID: "79a1af31aa8249a99602fc05687e8f40"},
	{Name: "Llama2-13b-alternative", UserID: "clarifai", AppID: "ml", ModelID: "llama2-13b-alternative", VersionID: "f5ef18073bdc4875ae9caa970f614eb3"},
	{Name: "Llama2-70b-chat", UserID: "meta", AppID: "Llama-2", ModelID: "llama2-70b-chat", VersionID: "6c27e86364ba461d98de95cddc559cb3"},
	{Name: "Llama2-70b-alternative", UserID: "clarifai", AppID: "ml", ModelID: "llama2-70b-alternative", VersionID: "75a64576ad664768b828f1047acdae30"},
	{Name: "GPT-3", UserID: "openai", AppID: "chat-completion", ModelID: "GPT-3_5-turbo", VersionID: "8ea3880d08a74dc0b39500b99dfaa376"},
	{Name: "GPT-4", UserID: "openai", AppID: "chat-completion", ModelID: "GPT-4", VersionID: "ad16eda6ac054796bf9f348ab6733c72"},
}

// Models returns the selectable models in display order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Names returns the model names in display order.
func Names() []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

// Lookup finds a model by name. Matching ignores surrounding whitespace but is
// otherwise exact.
func Lookup(name string) (Model, bool) {
	name = strings.TrimSpace(name)
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}
