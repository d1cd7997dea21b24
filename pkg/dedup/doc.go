/*
Package dedup detects near-duplicate work items by textual similarity.

Titles and bodies are normalized (lowercase, punctuation to spaces, collapsed
whitespace) and compared with two metrics:

  - Sequence similarity: Ratcliff/Obershelp ratio 2M/T over runes
  - Jaccard similarity: overlap of the word sets

Each field scores the maximum of the two metrics. The combined score weights
the title at 0.7 and the body at 0.3. A pair is a duplicate when the title
score reaches Thresholds.Title or the combined score reaches
Thresholds.Combined.

# Basic usage

	m, err := dedup.NewMatcher()
	if err != nil {
		return err
	}

	dup, scores := m.IsDuplicate(
		"Fix authentication bug in login", "User auth broken during login",
		"Fix authentication bug in login page", "Authentication system has issues with login")

# Batch checks

CheckList checks each candidate against the existing items and returns the
unique candidates plus a report for every rejected one:

	unique, reports, err := dedup.CheckList(ctx, m, candidates, issues)
	for _, r := range reports {
		log.Printf("%q duplicates #%d (%.2f)", r.Candidate.Title,
			r.Best.Item.Number, r.Best.Scores.Combined)
	}

Candidates are never compared with each other. WithConcurrency(n) checks up
to n candidates in parallel; results keep the input order either way.

# Thread safety

A Matcher is immutable after NewMatcher and may be shared between goroutines.
Observers passed with WithObserver must be safe for concurrent use when the
concurrency is above one.
*/
package dedup
