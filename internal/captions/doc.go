// Package captions turns the auto-generated WebVTT captions that yt-dlp
// downloads into a plain transcript.
//
// The parser is deliberately narrow: it does not interpret timings or styling,
// it only collapses the rolling duplicate cues that automatic captions produce
// into one readable line of text.
package captions
