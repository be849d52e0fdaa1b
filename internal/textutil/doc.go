// Package textutil provides the text helpers the session controller logs with:
// word counts, short excerpts, and token fingerprints.
//
// Fingerprints are term-frequency vectors. Comparing the fingerprint of a raw
// transcript with that of its punctuated rendition shows how much of the word
// content the model preserved; capitalization and punctuation do not affect
// the score.
package textutil
