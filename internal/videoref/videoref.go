// Package videoref resolves user input (a watch URL or a bare id) into a
// YouTube video id and builds the URLs derived from it.
package videoref

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRe = regexp.MustCompile(`v=([\w-]+)`)

// Resolve returns the token following the first "v=" in input. Input without
// that pattern is returned unchanged; no validation is performed.
func Resolve(input string) string {
	if m := videoIDRe.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// IsURL reports whether ref is already a full URL (for example a youtu.be
// short link Resolve left unchanged) rather than a bare video id.
func IsURL(ref string) bool {
	return strings.Contains(ref, "://")
}

// WatchURL is the address handed to the caption downloader. Bare ids are
// wrapped into a watch URL; full URLs pass through so yt-dlp can resolve them.
func WatchURL(id string) string {
	if IsURL(id) {
		return id
	}
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// EmbedURL is the player URL used for the read-only preview. It is empty when
// id is a full URL, since no embeddable id is known.
func EmbedURL(id string) string {
	if id == "" || IsURL(id) {
		return ""
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id)
}
