// Package language normalizes caption language codes.
//
// The caption fetcher passes the configured code straight to yt-dlp and
// derives the downloaded file name from it, so the code must be in the form
// YouTube uses: an ISO 639-1 primary tag with an optional region
// ("en", "pt-BR"). Common ISO 639-2 codes and English language names are
// accepted on input and mapped to that form.
package language
