package metadata

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metadata holds the generated title and description.
type Metadata struct {
	Raw         string `json:"raw"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether no model output is held.
func (m Metadata) Empty() bool {
	return strings.TrimSpace(m.Raw) == ""
}

var quotedBlockRe = regexp.MustCompile(`(?s)"""(.*?)"""`)

const (
	labelTitle       = "title:"
	labelDescription = "description:"
)

// Parse extracts the title and description from model output. Raw is always
// the input unchanged.
func Parse(text string) Metadata {
	meta := Metadata{Raw: text}
	source := Quoted(text)
	if source == "" {
		source = text
	}

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	var description []string
	inDescription := false
	awaitingTitle := false
	for _, raw := range lines {
		line := stripMarkup(raw)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, labelTitle) && meta.Title == "":
			meta.Title = cleanTitle(line[len(labelTitle):])
			awaitingTitle = meta.Title == ""
			inDescription = false
		case strings.HasPrefix(lower, labelDescription):
			inDescription = true
			awaitingTitle = false
			if rest := strings.TrimSpace(line[len(labelDescription):]); rest != "" {
				description = append(description, rest)
			}
		case awaitingTitle && line != "":
			meta.Title = cleanTitle(line)
			awaitingTitle = false
		case inDescription:
			description = append(description, strings.TrimSpace(raw))
		}
	}
	meta.Description = strings.TrimSpace(strings.Join(description, "\n"))
	meta.Title = titleCase(meta.Title)
	return meta
}

// Quoted returns the first block wrapped in triple double-quotes, trimmed, or
// an empty string when there is none.
func Quoted(text string) string {
	match := quotedBlockRe.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func stripMarkup(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#>-* ")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	return strings.TrimSpace(line)
}

func cleanTitle(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'“”`)
	return strings.TrimSpace(value)
}

func titleCase(title string) string {
	if title == "" || title != strings.ToLower(title) {
		return title
	}
	if strings.IndexFunc(title, unicode.IsLetter) < 0 {
		return title
	}
	return cases.Title(language.Und).String(title)
}
