package dedup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("egx closes higher", "egx closes higher"))
}

func TestRatioDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("aaa", "bbb"))
}

func TestRatioEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("x", ""))
	assert.Equal(t, 0.0, Ratio("", "x"))
}

func TestRatioSymmetric(t *testing.T) {
	a, b := "egypt cuts interest rates", "egypt holds interest rates"
	assert.Equal(t, Ratio(a, b), Ratio(b, a))
}

func TestRatioArabic(t *testing.T) {
	// Rune-based: Arabic titles must compare by character, not byte.
	a := "البورصة المصرية ترتفع"
	b := "البورصة المصرية تتراجع"
	got := Ratio(a, b)
	assert.Greater(t, got, 0.7)
	assert.Less(t, got, 1.0)
}

// Boundary values around the 0.90 threshold used by the fuzzy pass.
func TestRatioThresholdBoundaries(t *testing.T) {
	// 89 shared + 11 differing runes each side: 2*89/200 = 0.89
	below := Ratio(strings.Repeat("a", 89)+strings.Repeat("b", 11), strings.Repeat("a", 89)+strings.Repeat("c", 11))
	assert.InDelta(t, 0.89, below, 1e-9)

	// 90 shared + 10 differing: exactly 0.90
	at := Ratio(strings.Repeat("a", 90)+strings.Repeat("b", 10), strings.Repeat("a", 90)+strings.Repeat("c", 10))
	assert.InDelta(t, 0.90, at, 1e-9)
	assert.False(t, at > 0.90, "exact threshold must not count as a duplicate")

	// 91 shared + 9 differing: 0.91
	above := Ratio(strings.Repeat("a", 91)+strings.Repeat("b", 9), strings.Repeat("a", 91)+strings.Repeat("c", 9))
	assert.InDelta(t, 0.91, above, 1e-9)
	assert.True(t, above > 0.90)
}
