package testsupport

import (
	"fmt"
	"strings"
	"time"
)

// VTT builds an auto-caption style WebVTT document with one cue per text,
// two seconds apart.
func VTT(texts ...string) string {
	var b strings.Builder
	b.WriteString("WEBVTT\nKind: captions\nLanguage: en\n\n")
	for i, text := range texts {
		start := time.Duration(i*2) * time.Second
		end := start + 2*time.Second
		fmt.Fprintf(&b, "%s --> %s align:start position:0%%\n%s\n\n", cueTime(start), cueTime(end), text)
	}
	return b.String()
}

func cueTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
