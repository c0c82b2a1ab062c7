package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"ACOUNT_CODE", "ACCOUNT_CODE", 1},
		{"flaw", "lawn", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, tt.want, editDistance(tt.b, tt.a), "distance is symmetric")
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 1.0, Ratio("SAME", "SAME"))
	assert.Equal(t, 0.0, Ratio("", "XY"))
	assert.InDelta(t, 1.0-1.0/12.0, Ratio("ACOUNT_CODE", "ACCOUNT_CODE"), 1e-9)
}

func TestNormalizeExactMatch(t *testing.T) {
	n := New([]string{"ACCOUNT_CODE", "PRODUCT_CODE"}, Config{})

	r := n.Normalize("ACCOUNT_CODE")
	assert.Equal(t, "ACCOUNT_CODE", r.Normalized)
	assert.False(t, r.WasAliased)
	assert.Equal(t, 1.0, r.Confidence)

	// Case-insensitive, canonical casing returned.
	r = n.Normalize("account_code")
	assert.Equal(t, "ACCOUNT_CODE", r.Normalized)
	assert.False(t, r.WasAliased)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestNormalizeAliasTable(t *testing.T) {
	n := New([]string{"ACCOUNT_CODE"}, Config{
		Aliases: map[string]string{"ACCT_CODE": "ACCOUNT_CODE"},
	})

	r := n.Normalize("acct_code")
	assert.Equal(t, "ACCOUNT_CODE", r.Normalized)
	assert.True(t, r.WasAliased)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestNormalizeFuzzyDetection(t *testing.T) {
	// The worked example: one dropped letter against a 12-char canonical
	// value lands at ~0.92, above the 0.85 default threshold.
	n := New([]string{"ACCOUNT_CODE"}, Config{})

	r := n.Normalize("ACOUNT_CODE")
	assert.Equal(t, "ACCOUNT_CODE", r.Normalized)
	assert.True(t, r.WasAliased)
	assert.InDelta(t, 0.9167, r.Confidence, 0.0005)
}

func TestNormalizeUnrecognized(t *testing.T) {
	n := New([]string{"ACCOUNT_CODE"}, Config{})

	r := n.Normalize("ZZZ_TOTALLY_DIFFERENT")
	assert.Equal(t, "ZZZ_TOTALLY_DIFFERENT", r.Normalized)
	assert.False(t, r.WasAliased)
	assert.Equal(t, 0.0, r.Confidence)
	assert.Contains(t, r.Suggestion, "not recognized")
}

func TestNormalizeSelfLearningCache(t *testing.T) {
	cache := NewMapCache()
	n := New([]string{"ACCOUNT_CODE"}, Config{Cache: cache})

	require.Equal(t, 0, cache.Len())

	first := n.Normalize("ACOUNT_CODE")
	assert.True(t, first.WasAliased)
	assert.Equal(t, 1, cache.Len(), "auto-detection learns the pair")

	learned, ok := cache.Lookup("ACOUNT_CODE")
	require.True(t, ok)
	assert.Equal(t, "ACCOUNT_CODE", learned)

	// The second call resolves from the cache with full confidence.
	second := n.Normalize("ACOUNT_CODE")
	assert.True(t, second.WasAliased)
	assert.Equal(t, 1.0, second.Confidence)
}

func TestNormalizeStrictSkipsFuzzy(t *testing.T) {
	cache := NewMapCache()
	n := New([]string{"ACCOUNT_CODE"}, Config{Cache: cache})

	r := n.NormalizeStrict("ACOUNT_CODE")
	assert.Equal(t, 0.0, r.Confidence)
	assert.Equal(t, 0, cache.Len(), "strict mode learns nothing")

	// A learned entry still applies in strict mode.
	cache.Learn("ACOUNT_CODE", "ACCOUNT_CODE")
	r = n.NormalizeStrict("ACOUNT_CODE")
	assert.Equal(t, "ACCOUNT_CODE", r.Normalized)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestNormalizeThresholdBoundary(t *testing.T) {
	// "ABCDEFGHIJ" vs "ABCDEFGHXX": distance 2 over length 10 = 0.80.
	n := New([]string{"ABCDEFGHIJ"}, Config{Threshold: 0.80})
	r := n.Normalize("ABCDEFGHXX")
	assert.True(t, r.WasAliased, "similarity at the threshold matches")
	assert.InDelta(t, 0.80, r.Confidence, 1e-9)

	strict := New([]string{"ABCDEFGHIJ"}, Config{Threshold: 0.81})
	r = strict.Normalize("ABCDEFGHXX")
	assert.False(t, r.WasAliased, "similarity below the threshold does not match")
	assert.Equal(t, 0.0, r.Confidence)
}

func TestNormalizeIdempotence(t *testing.T) {
	n := New([]string{"ACCOUNT_CODE", "PRODUCT_CODE", "REGION_CODE"}, Config{})

	inputs := []string{
		"ACCOUNT_CODE",  // canonical
		"acount_code",   // typo
		"PRODUCT_CODE",  // canonical
		"REGON_CODE",    // typo
		"UNKNOWN_THING", // unrecognized
	}

	for _, in := range inputs {
		first := n.Normalize(in)
		second := n.Normalize(first.Normalized)
		assert.Equal(t, first.Normalized, second.Normalized,
			"re-normalizing %q must be a no-op", in)
		if first.Confidence > 0 {
			assert.Equal(t, 1.0, second.Confidence,
				"an already-normalized value is an exact match")
		}
	}
}

func TestBestMatch(t *testing.T) {
	n := New([]string{"ACCOUNT_CODE", "PRODUCT_CODE"}, Config{})

	canon, sim := n.BestMatch("PRODUT_CODE")
	assert.Equal(t, "PRODUCT_CODE", canon)
	assert.Greater(t, sim, 0.9)

	_, sim = n.BestMatch("COMPLETELY_UNRELATED_XYZ")
	assert.Less(t, sim, 0.5)
}

func TestCanonicalDeduplicates(t *testing.T) {
	n := New([]string{"ACCOUNT_CODE", "account_code", "PRODUCT_CODE"}, Config{})
	assert.Equal(t, []string{"ACCOUNT_CODE", "PRODUCT_CODE"}, n.Canonical())
}
