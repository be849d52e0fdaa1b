package captions

import (
	"strings"
	"unicode/utf8"
)

// cueSeparator marks a WebVTT cue timing line ("00:00:01.000 --> 00:00:03.000").
const cueSeparator = "-->"

// Line is one captured caption line.
type Line struct {
	Text string
	// Position is the zero-based line index in the source document.
	Position int
}

// Transcript is the ordered, deduplicated caption text of one document.
type Transcript struct {
	Lines []Line
}

// Parse extracts the spoken text from an auto-generated WebVTT document.
//
// Only the first line after each cue timing line is captured. Automatic
// captions repeat every phrase across overlapping cues and carry the
// word-by-word variant inside <c> tags, so lines with markup are skipped and a
// capture equal to the previous one is dropped. Anything before the first cue
// (the WEBVTT header, Kind/Language metadata) is ignored.
//
// Input that is not valid UTF-8 or has no cues yields an empty transcript.
func Parse(doc []byte) Transcript {
	if len(doc) == 0 || !utf8.Valid(doc) {
		return Transcript{}
	}

	var (
		lines       []Line
		pastHeader  bool
		captureNext bool
	)
	for idx, raw := range strings.Split(string(doc), "\n") {
		line := strings.TrimSpace(raw)

		if strings.Contains(line, cueSeparator) {
			pastHeader = true
			captureNext = true
			continue
		}
		if !pastHeader {
			continue
		}
		if !captureNext || line == "" || strings.ContainsAny(line, "<>") {
			continue
		}
		if n := len(lines); n == 0 || lines[n-1].Text != line {
			lines = append(lines, Line{Text: line, Position: idx})
		}
		captureNext = false
	}
	return Transcript{Lines: lines}
}

// Normalize parses doc and returns the single-line transcript text.
func Normalize(doc []byte) string {
	return Parse(doc).Text()
}

// Text joins the captured lines with a single space and strips any remaining
// line breaks so the transcript is one logical line.
func (t Transcript) Text() string {
	if len(t.Lines) == 0 {
		return ""
	}
	parts := make([]string, len(t.Lines))
	for i, line := range t.Lines {
		parts[i] = line.Text
	}
	return lineBreakRemover.Replace(strings.Join(parts, " "))
}

// Empty reports whether no caption text was captured.
func (t Transcript) Empty() bool {
	return len(t.Lines) == 0
}

// Len returns the number of captured lines.
func (t Transcript) Len() int {
	return len(t.Lines)
}

var lineBreakRemover = strings.NewReplacer("\n", "", "\r", "")
