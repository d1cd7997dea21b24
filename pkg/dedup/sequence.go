package dedup

// SequenceSimilarity returns the Ratcliff/Obershelp similarity 2M/T of the
// normalized forms of a and b, where M is the number of runes in matching
// blocks and T the total rune count. The result is in [0, 1] and is 0 when
// either normalized string is empty.
func SequenceSimilarity(a, b string) float64 {
	return sequenceRatio(Normalize(a), Normalize(b))
}

// sequenceRatio computes the ratio on already normalized strings
func sequenceRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	// The greedy block search is order dependent; fixing the order keeps the
	// score symmetric.
	if a > b {
		a, b = b, a
	}

	ra, rb := []rune(a), []rune(b)
	m := newSequenceMatcher(ra, rb).matchedRunes()
	return 2 * float64(m) / float64(len(ra)+len(rb))
}

type sequenceMatcher struct {
	a, b []rune
	// b2j maps each rune of b to the ascending positions where it occurs
	b2j map[rune][]int
}

func newSequenceMatcher(a, b []rune) *sequenceMatcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &sequenceMatcher{a: a, b: b, b2j: b2j}
}

type block struct {
	i, j, size int
}

// longestMatch finds the longest common block in a[alo:ahi] and b[blo:bhi].
// Among equally long blocks it returns the one starting earliest in a, and
// of those the one starting earliest in b.
func (s *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) block {
	best := block{i: alo, j: blo}

	// j2len[j] is the length of the match ending at a[i-1] and b[j]
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range s.b2j[s.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		j2len = next
	}
	return best
}

// matchedRunes sums the sizes of all matching blocks found by recursively
// taking the longest match and searching the regions to its left and right.
func (s *sequenceMatcher) matchedRunes() int {
	type span struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []span{{0, len(s.a), 0, len(s.b)}}
	for len(queue) > 0 {
		sp := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := s.longestMatch(sp.alo, sp.ahi, sp.blo, sp.bhi)
		if m.size == 0 {
			continue
		}
		total += m.size

		if sp.alo < m.i && sp.blo < m.j {
			queue = append(queue, span{sp.alo, m.i, sp.blo, m.j})
		}
		if m.i+m.size < sp.ahi && m.j+m.size < sp.bhi {
			queue = append(queue, span{m.i + m.size, sp.ahi, m.j + m.size, sp.bhi})
		}
	}
	return total
}
