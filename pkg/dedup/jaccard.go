package dedup

// JaccardSimilarity returns |A∩B| / |A∪B| over the word sets of the
// normalized forms of a and b. It is 0 when either set is empty.
func JaccardSimilarity(a, b string) float64 {
	return jaccard(tokens(Normalize(a)), tokens(Normalize(b)))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
