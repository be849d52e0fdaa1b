package catalog

// Prompt is an instruction prefix sent ahead of the text body.
type Prompt struct {
	Kind   string
	Prefix string
}

// FormatPrompt asks the model to restore capitalization, punctuation, and
// paragraphs without rewording the transcript.
var FormatPrompt = Prompt{
	Kind: "format",
	Prefix: "Below is the transcript of a video. Please correct the capitalization and punctuation, " +
		"including making separate paragraphs, without changing any of the text. If a word is misspelled, " +
		"correct the word, and if a word does not exist take your best guess as to the correct word. " +
		"Only return the corrected text without commentary:",
}

// VideoMetadataPrompt asks the model for a video title and description.
var VideoMetadataPrompt = Prompt{
	Kind:   "video_metadata",
	Prefix: "[INST] Write a YouTube video title and video description for the following video script. [/INST]",
}

// BuildRequest assembles the raw text payload: prefix, newline, body, newline.
func BuildRequest(p Prompt, body string) string {
	return p.Prefix + "\n" + body + "\n"
}
