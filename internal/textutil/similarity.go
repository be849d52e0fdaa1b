package textutil

// Similarity returns the cosine of the angle between two fingerprints, in the
// range [0, 1]. A nil or empty fingerprint on either side scores 0.
func (f *Fingerprint) Similarity(other *Fingerprint) float64 {
	if f == nil || other == nil || f.norm == 0 || other.norm == 0 {
		return 0
	}
	small, large := f.tokens, other.tokens
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for token, count := range small {
		dot += count * large[token]
	}
	score := dot / (f.norm * other.norm)
	if score > 1 {
		return 1
	}
	return score
}

// TextSimilarity compares the word content of a and b, ignoring punctuation
// and capitalization. The session controller uses it to spot model output that
// rewrote a transcript instead of punctuating it.
func TextSimilarity(a, b string) float64 {
	return NewFingerprint(a).Similarity(NewFingerprint(b))
}
