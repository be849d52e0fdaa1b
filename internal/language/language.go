package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   []string // ISO 639-2 forms (e.g. "fra" and "fre")
	display string   // Human-readable name
}

var languages = []entry{
	{"en", []string{"eng"}, "English"},
	{"es", []string{"spa"}, "Spanish"},
	{"fr", []string{"fra", "fre"}, "French"},
	{"de", []string{"deu", "ger"}, "German"},
	{"it", []string{"ita"}, "Italian"},
	{"pt", []string{"por"}, "Portuguese"},
	{"ja", []string{"jpn"}, "Japanese"},
	{"ko", []string{"kor"}, "Korean"},
	{"zh", []string{"zho", "chi"}, "Chinese"},
	{"ru", []string{"rus"}, "Russian"},
	{"ar", []string{"ara"}, "Arabic"},
	{"hi", []string{"hin"}, "Hindi"},
	{"nl", []string{"nld", "dut"}, "Dutch"},
	{"pl", []string{"pol"}, "Polish"},
	{"sv", []string{"swe"}, "Swedish"},
	{"da", []string{"dan"}, "Danish"},
	{"no", []string{"nor"}, "Norwegian"},
	{"fi", []string{"fin"}, "Finnish"},
}

var index map[string]*entry

func init() {
	index = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		index[e.code2] = e
		for _, code := range e.code3 {
			index[code] = e
		}
		index[strings.ToLower(e.display)] = e
	}
}

// CaptionCode converts input to a YouTube caption language code. Known
// 3-letter codes and language names map to their 2-letter form; unknown 2 or
// 3 letter primaries pass through. A region suffix is kept and uppercased.
// Returns an empty string when input cannot be a language code.
func CaptionCode(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	primary, region, hasRegion := strings.Cut(strings.ReplaceAll(input, "_", "-"), "-")
	primary = strings.ToLower(primary)
	if e, ok := index[primary]; ok {
		primary = e.code2
	} else if !isLetters(primary) || len(primary) < 2 || len(primary) > 3 {
		return ""
	}
	if !hasRegion {
		return primary
	}
	if region == "" || len(region) > 4 || !isAlnum(region) {
		return ""
	}
	return primary + "-" + strings.ToUpper(region)
}

// DisplayName returns a human-readable name for a caption code, for example
// "English" or "Portuguese (BR)". Unknown codes are returned uppercased.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	primary, region, hasRegion := strings.Cut(code, "-")
	name := strings.ToUpper(code)
	if e, ok := index[strings.ToLower(primary)]; ok {
		name = e.display
		if hasRegion && region != "" {
			name += " (" + strings.ToUpper(region) + ")"
		}
	}
	return name
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

func isAlnum(s string) bool {
	for _, r := range strings.ToLower(s) {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
