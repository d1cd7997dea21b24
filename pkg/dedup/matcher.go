package dedup

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

const (
	// TitleWeight is the share of the title score in the combined score
	TitleWeight = 0.7
	// BodyWeight is the share of the body score in the combined score
	BodyWeight = 0.3
)

var (
	// ErrInvalidThresholds is returned when a threshold is outside [0, 1]
	ErrInvalidThresholds = errors.New("invalid thresholds")
	// ErrInvalidConcurrency is returned for a concurrency below 1
	ErrInvalidConcurrency = errors.New("invalid concurrency")
)

// Scores holds the similarity scores of one comparison
type Scores struct {
	// Title is max(TitleSequence, TitleJaccard)
	Title float64
	// Body is max(BodySequence, BodyJaccard), 0 when either body is empty
	Body float64
	// Combined is TitleWeight*Title + BodyWeight*Body
	Combined float64

	TitleSequence float64
	TitleJaccard  float64
	BodySequence  float64
	BodyJaccard   float64
}

// Thresholds decide when a comparison counts as a duplicate
type Thresholds struct {
	Title    float64 `yaml:"title"`
	Body     float64 `yaml:"body"`
	Combined float64 `yaml:"combined"`
}

// DefaultThresholds returns the stock thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Title:    0.75,
		Body:     0.60,
		Combined: 0.65,
	}
}

// Validate checks that every threshold is a number in [0, 1]
func (t Thresholds) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s threshold %v not in [0, 1]", ErrInvalidThresholds, name, v)
		}
		return nil
	}
	if err := check("title", t.Title); err != nil {
		return err
	}
	if err := check("body", t.Body); err != nil {
		return err
	}
	return check("combined", t.Combined)
}

// Observer receives the outcome of matcher decisions
type Observer interface {
	// ObserveComparison is called for every pairwise comparison
	ObserveComparison(scores Scores, duplicate bool)
	// ObserveCandidate is called once per candidate checked by CheckList
	ObserveCandidate(duplicate bool)
}

// Matcher compares items by title and body similarity. A Matcher is
// immutable and safe for concurrent use.
type Matcher struct {
	thresholds  Thresholds
	logger      *slog.Logger
	concurrency int
	observer    Observer
}

// MatcherOption configures a Matcher
type MatcherOption func(*Matcher)

// WithThresholds sets the duplicate thresholds
func WithThresholds(t Thresholds) MatcherOption {
	return func(m *Matcher) {
		m.thresholds = t
	}
}

// WithLogger sets the logger used for per-candidate decisions
func WithLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConcurrency sets how many candidates CheckList checks in parallel
func WithConcurrency(n int) MatcherOption {
	return func(m *Matcher) {
		m.concurrency = n
	}
}

// WithObserver registers an observer for comparisons and candidate outcomes.
// CheckList calls it from several goroutines when the concurrency is above one,
// so it must then be safe for concurrent use.
func WithObserver(o Observer) MatcherOption {
	return func(m *Matcher) {
		m.observer = o
	}
}

// NewMatcher creates a matcher with DefaultThresholds unless overridden
func NewMatcher(opts ...MatcherOption) (*Matcher, error) {
	m := &Matcher{
		thresholds:  DefaultThresholds(),
		logger:      slog.Default(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.thresholds.Validate(); err != nil {
		return nil, err
	}
	if m.concurrency < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConcurrency, m.concurrency)
	}
	return m, nil
}

// Thresholds returns the matcher's thresholds
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// Compare scores two title/body pairs
func (m *Matcher) Compare(titleA, bodyA, titleB, bodyB string) Scores {
	return compare(prepare(titleA, bodyA), prepare(titleB, bodyB))
}

// IsDuplicate reports whether the pairs are duplicates: the title score
// reaches the title threshold or the combined score reaches the combined
// threshold.
func (m *Matcher) IsDuplicate(titleA, bodyA, titleB, bodyB string) (bool, Scores) {
	scores := m.Compare(titleA, bodyA, titleB, bodyB)
	dup := m.decide(scores)
	m.observeComparison(scores, dup)
	return dup, scores
}

func (m *Matcher) decide(s Scores) bool {
	return s.Title >= m.thresholds.Title || s.Combined >= m.thresholds.Combined
}

func (m *Matcher) observeComparison(s Scores, dup bool) {
	if m.observer != nil {
		m.observer.ObserveComparison(s, dup)
	}
}

func (m *Matcher) observeCandidate(dup bool) {
	if m.observer != nil {
		m.observer.ObserveCandidate(dup)
	}
}

// prepared is a normalized title/body pair with its word sets
type prepared struct {
	title, body           string
	titleWords, bodyWords map[string]struct{}
}

func prepare(title, body string) prepared {
	p := prepared{
		title: Normalize(title),
		body:  Normalize(body),
	}
	p.titleWords = tokens(p.title)
	p.bodyWords = tokens(p.body)
	return p
}

func compare(a, b prepared) Scores {
	s := Scores{
		TitleSequence: sequenceRatio(a.title, b.title),
		TitleJaccard:  jaccard(a.titleWords, b.titleWords),
	}
	s.Title = math.Max(s.TitleSequence, s.TitleJaccard)

	if a.body != "" && b.body != "" {
		s.BodySequence = sequenceRatio(a.body, b.body)
		s.BodyJaccard = jaccard(a.bodyWords, b.bodyWords)
		s.Body = math.Max(s.BodySequence, s.BodyJaccard)
	}

	s.Combined = TitleWeight*s.Title + BodyWeight*s.Body
	return s
}
