package dedup

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/callguard/internal/testutils"
)

func newTestMatcher(t *testing.T, opts ...MatcherOption) *Matcher {
	t.Helper()
	m, err := NewMatcher(opts...)
	require.NoError(t, err)
	return m
}

type countingObserver struct {
	mu          sync.Mutex
	comparisons int
	duplicates  int
	candidates  int
	rejected    int
}

func (o *countingObserver) ObserveComparison(_ Scores, duplicate bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.comparisons++
	if duplicate {
		o.duplicates++
	}
}

func (o *countingObserver) ObserveCandidate(duplicate bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.candidates++
	if duplicate {
		o.rejected++
	}
}

func TestIsDuplicate_NearDuplicateTitle(t *testing.T) {
	m := newTestMatcher(t)

	dup, scores := m.IsDuplicate(
		"Fix authentication bug in login", "User auth broken during login",
		"Fix authentication bug in login page", "Authentication system has issues with login")

	assert.True(t, dup)
	assert.GreaterOrEqual(t, scores.Title, 0.75)
	assert.InDelta(t, 0.92537, scores.Title, epsilon)
	assert.InDelta(t, 0.92537, scores.TitleSequence, epsilon)
	assert.InDelta(t, 5.0/6.0, scores.TitleJaccard, epsilon)
	assert.InDelta(t, 0.38889, scores.Body, epsilon)
	assert.InDelta(t, 0.76443, scores.Combined, epsilon)
}

func TestIsDuplicate_UnrelatedTitles(t *testing.T) {
	m := newTestMatcher(t)

	dup, scores := m.IsDuplicate("Fix authentication bug", "", "Add dark mode feature", "")

	assert.False(t, dup)
	assert.Less(t, scores.Title, 0.3)
	assert.Zero(t, scores.Body)
	assert.InDelta(t, 0.7*scores.Title, scores.Combined, 1e-9)
}

func TestIsDuplicate_CombinedPath(t *testing.T) {
	// title alone misses a strict title threshold, the weighted sum does not
	m := newTestMatcher(t, WithThresholds(Thresholds{Title: 0.95, Body: 0.6, Combined: 0.65}))

	dup, scores := m.IsDuplicate(
		"Improve application performance", "Make the app faster",
		"Improve application performance issues", "The app is slow when loading large lists")

	assert.True(t, dup)
	assert.Less(t, scores.Title, 0.95)
	assert.InDelta(t, 0.74085, scores.Combined, epsilon)
}

func TestIsDuplicate_ThresholdBoundaryInclusive(t *testing.T) {
	scores := newTestMatcher(t).Compare("abcd", "", "bcda", "")
	require.InDelta(t, 0.75, scores.Title, 1e-12)

	m := newTestMatcher(t, WithThresholds(Thresholds{Title: scores.Title, Body: 0.6, Combined: 1}))
	dup, _ := m.IsDuplicate("abcd", "", "bcda", "")
	assert.True(t, dup)
}

func TestCompare_Properties(t *testing.T) {
	m := newTestMatcher(t)

	self := m.Compare("Fix login bug", "Users cannot log in", "Fix login bug", "Users cannot log in")
	assert.Equal(t, 1.0, self.Title)
	assert.Equal(t, 1.0, self.Body)
	assert.InDelta(t, 1.0, self.Combined, 1e-12)

	ab := m.Compare("Fix login bug", "Users cannot log in", "Login broken", "Cannot sign in at all")
	ba := m.Compare("Login broken", "Cannot sign in at all", "Fix login bug", "Users cannot log in")
	assert.Equal(t, ab, ba)

	empty := m.Compare("", "", "Fix login bug", "body")
	assert.Equal(t, Scores{}, empty)

	whitespace := m.Compare("   ", "\t", "   ", "\t")
	assert.Equal(t, Scores{}, whitespace)
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.NoError(t, Thresholds{}.Validate())
	assert.NoError(t, Thresholds{Title: 1, Body: 1, Combined: 1}.Validate())

	bad := []Thresholds{
		{Title: -0.1, Body: 0.5, Combined: 0.5},
		{Title: 0.5, Body: 1.1, Combined: 0.5},
		{Title: 0.5, Body: 0.5, Combined: math.NaN()},
	}
	for _, th := range bad {
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds, "%+v", th)
	}
}

func TestNewMatcher_Errors(t *testing.T) {
	_, err := NewMatcher(WithThresholds(Thresholds{Title: 2}))
	assert.True(t, errors.Is(err, ErrInvalidThresholds))

	_, err = NewMatcher(WithConcurrency(0))
	assert.True(t, errors.Is(err, ErrInvalidConcurrency))
}

func TestNewMatcher_Defaults(t *testing.T) {
	m := newTestMatcher(t)
	assert.Equal(t, DefaultThresholds(), m.Thresholds())
	assert.Equal(t, 0.75, m.Thresholds().Title)
	assert.Equal(t, 0.65, m.Thresholds().Combined)
}

func TestMatcher_Observer(t *testing.T) {
	obs := &countingObserver{}
	m := newTestMatcher(t, WithObserver(obs))

	m.IsDuplicate("Fix authentication bug", "", "Fix authentication bug", "")
	m.IsDuplicate("Fix authentication bug", "", "Add dark mode feature", "")

	assert.Equal(t, 2, obs.comparisons)
	assert.Equal(t, 1, obs.duplicates)
	assert.Zero(t, obs.candidates)
}

func TestMatcher_LogsDecisions(t *testing.T) {
	logger, buf := testutils.NewLogger()
	m := newTestMatcher(t, WithLogger(logger))

	existing := []Issue{{Number: 1, Title: "Fix authentication bug", Body: "login fails"}}
	candidates := []Candidate{
		{Title: "Fix authentication bug", Body: "login fails"},
		{Title: "Add dark mode", Body: "theme support"},
	}

	_, _, err := CheckList(testutils.Context(t), m, candidates, existing)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "duplicate candidate")
	assert.Contains(t, buf.String(), "unique candidate")
	assert.Contains(t, buf.String(), `existing_title="Fix authentication bug"`)
}
