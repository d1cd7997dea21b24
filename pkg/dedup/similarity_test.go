package dedup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-4

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fix: API bug #123", "fix api bug 123"},
		{"  Hello,   World!! ", "hello world"},
		{"snake_case stays", "snake_case stays"},
		{"naïve café—test", "naïve café test"},
		{"Chapter Ⅻ: x² + y²", "chapter ⅻ x² y²"},
		{"½ done", "½ done"},
		{"CI/CD\tpipeline\n", "ci cd pipeline"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Fix: API bug #123", "  A  b\tC ", "ÀÉÎ--õü", "x"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestSequenceSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Fix authentication bug", "Fix authentication bug", 1},
		{"identical after normalization", "Fix: authentication bug!", "fix authentication   bug", 1},
		{"near duplicate", "Fix authentication bug in login", "Fix authentication bug in login page", 0.92537},
		{"unrelated", "Fix authentication bug", "Add dark mode feature", 0.23256},
		{"reworded", "Fix authentication bug", "Fix authentication issue", 0.86957},
		{"rotation", "abcd", "bcda", 0.75},
		{"accents", "héllo wörld", "hello world", 0.81818},
		{"empty left", "", "something", 0},
		{"empty right", "something", "", 0},
		{"punctuation only", "!!!", "???", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SequenceSimilarity(tt.a, tt.b), epsilon)
		})
	}
}

func TestSequenceSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"abcd", "bcda"},
		{"Fix authentication bug", "Add dark mode feature"},
		{"User auth broken during login", "Authentication system has issues with login"},
		{"the quick brown fox", "brown quick the fox"},
		{"aaab", "abaa"},
	}

	for _, p := range pairs {
		ab := SequenceSimilarity(p[0], p[1])
		ba := SequenceSimilarity(p[1], p[0])
		if ab != ba {
			t.Errorf("SequenceSimilarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"half overlap", "a b c", "b c d", 0.5},
		{"identical sets", "login bug fix", "fix bug login", 1},
		{"duplicates collapse", "bug bug bug", "bug", 1},
		{"disjoint", "fix authentication", "dark mode", 0},
		{"near duplicate", "Fix authentication bug in login", "Fix authentication bug in login page", 5.0 / 6.0},
		{"reworded", "Fix authentication bug", "Fix authentication issue", 0.5},
		{"empty", "", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, JaccardSimilarity(tt.a, tt.b), epsilon)
			assert.InDelta(t, tt.want, JaccardSimilarity(tt.b, tt.a), epsilon)
		})
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	inputs := []string{"", "a", "Fix bug", "fix the login bug now", "zzz yyy", "ÉÈ ê"}
	for _, a := range inputs {
		for _, b := range inputs {
			for _, v := range []float64{SequenceSimilarity(a, b), JaccardSimilarity(a, b)} {
				if math.IsNaN(v) || v < 0 || v > 1 {
					t.Fatalf("similarity(%q, %q) = %v outside [0, 1]", a, b, v)
				}
			}
		}
	}
}
