package dedup

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Item is anything with a title and a body that can be checked for duplicates
type Item interface {
	ItemTitle() string
	ItemBody() string
}

// Issue is an existing work item
type Issue struct {
	Number int      `json:"number" yaml:"number"`
	Title  string   `json:"title" yaml:"title"`
	Body   string   `json:"body" yaml:"body"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// ItemTitle implements Item
func (i Issue) ItemTitle() string { return i.Title }

// ItemBody implements Item
func (i Issue) ItemBody() string { return i.Body }

// Candidate is a newly generated work item. Labels and Metadata are
// carried through CheckList unchanged.
type Candidate struct {
	Title    string         `json:"title" yaml:"title"`
	Body     string         `json:"body" yaml:"body"`
	Labels   []string       `json:"labels,omitempty" yaml:"labels,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ItemTitle implements Item
func (c Candidate) ItemTitle() string { return c.Title }

// ItemBody implements Item
func (c Candidate) ItemBody() string { return c.Body }

// Match is an existing item found to duplicate a candidate
type Match[E Item] struct {
	// Item is the existing item
	Item E
	// Index is the position of Item in the existing slice
	Index int
	// Scores are the candidate-to-item scores
	Scores Scores
}

// Report records a candidate rejected as a duplicate
type Report[E Item] struct {
	Candidate Candidate
	// Best is the match with the highest combined score
	Best Match[E]
	// Matches lists every match, best first
	Matches []Match[E]
}

// FindDuplicates returns the existing items that title/body duplicates,
// sorted by combined score descending. Equal scores keep their order in
// existing.
func FindDuplicates[E Item](m *Matcher, title, body string, existing []E) []Match[E] {
	return findDuplicates(m, prepare(title, body), existing, prepareAll(existing))
}

// CheckList checks every candidate independently against existing and
// partitions them into unique candidates and duplicate reports, both in
// input order. Candidates are not compared with each other. When the matcher
// has a concurrency above one, candidates are checked in parallel.
func CheckList[E Item](ctx context.Context, m *Matcher, candidates []Candidate, existing []E) ([]Candidate, []Report[E], error) {
	pool := prepareAll(existing)
	results := make([][]Match[E], len(candidates))

	check := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := candidates[i]
		results[i] = findDuplicates(m, prepare(c.Title, c.Body), existing, pool)
		return nil
	}

	if m.concurrency <= 1 || len(candidates) <= 1 {
		for i := range candidates {
			if err := check(ctx, i); err != nil {
				return nil, nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.concurrency)
		for i := range candidates {
			g.Go(func() error {
				return check(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	var (
		unique  []Candidate
		reports []Report[E]
	)
	for i, c := range candidates {
		matches := results[i]
		dup := len(matches) > 0
		m.observeCandidate(dup)

		if !dup {
			m.logger.DebugContext(ctx, "unique candidate", "title", c.Title)
			unique = append(unique, c)
			continue
		}

		best := matches[0]
		m.logger.DebugContext(ctx, "duplicate candidate",
			"title", c.Title,
			"existing_title", best.Item.ItemTitle(),
			"existing_index", best.Index,
			"title_similarity", best.Scores.Title,
			"combined_similarity", best.Scores.Combined)
		reports = append(reports, Report[E]{
			Candidate: c,
			Best:      best,
			Matches:   matches,
		})
	}

	return unique, reports, nil
}

func prepareAll[E Item](items []E) []prepared {
	out := make([]prepared, len(items))
	for i, it := range items {
		out[i] = prepare(it.ItemTitle(), it.ItemBody())
	}
	return out
}

func findDuplicates[E Item](m *Matcher, query prepared, existing []E, pool []prepared) []Match[E] {
	var matches []Match[E]
	for i, p := range pool {
		scores := compare(query, p)
		dup := m.decide(scores)
		m.observeComparison(scores, dup)
		if dup {
			matches = append(matches, Match[E]{Item: existing[i], Index: i, Scores: scores})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Scores.Combined > matches[j].Scores.Combined
	})
	return matches
}
