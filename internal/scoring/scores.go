// Package scoring holds the pure numeric scoring functions used by the
// matching and recommendation layers. Nothing here performs I/O or keeps
// state between calls.
package scoring

import (
	"math"
	"strings"

	"github.com/skillbridge/learnmatch/internal/domain"
)

// minMatchProficiency is the lowest proficiency that counts toward a
// required skill.
const minMatchProficiency = domain.ProficiencyIntermediate

// SkillMatch returns the fraction of required skills the learner holds at
// intermediate level or above. An empty requirement list scores 0.
func SkillMatch(required []string, skills map[string]domain.Proficiency) float64 {
	if len(required) == 0 {
		return 0
	}

	held := make(map[string]domain.Proficiency, len(skills))
	for name, lvl := range skills {
		held[normalizeSkill(name)] = lvl
	}

	matched := 0
	for _, req := range required {
		lvl, ok := held[normalizeSkill(req)]
		if ok && lvl.Rank() >= minMatchProficiency.Rank() {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// CosineSimilarity computes the standard dot-product-over-magnitudes
// similarity. A zero-magnitude vector on either side yields 0, never NaN.
// Vectors of different lengths are compared over the shorter prefix.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// EducationScore returns 1 when the learner's education is at or above the
// required level on the fixed ordinal scale, else 0. An unset requirement
// is satisfied by anything.
func EducationScore(user, required domain.EducationLevel) float64 {
	if required == "" {
		return 1
	}
	if user.Rank() >= required.Rank() {
		return 1
	}
	return 0
}

// LocationScore gives full credit on an exact match and flat partial
// credit otherwise. Deliberately not a geodistance model.
func LocationScore(userLocation, itemLocation string) float64 {
	u := strings.ToLower(strings.TrimSpace(userLocation))
	it := strings.ToLower(strings.TrimSpace(itemLocation))
	if u != "" && u == it {
		return 1
	}
	return 0.5
}

// CompensationScore measures how close the offered compensation is to the
// learner's expectation: max(0, 1 - |expected-offered|/expected). When the
// expectation is 0 the result is 1 only if the offer is also 0.
func CompensationScore(expected, offered float64) float64 {
	if expected == 0 {
		if offered == 0 {
			return 1
		}
		return 0
	}
	gap := math.Abs(expected-offered) / math.Abs(expected)
	return math.Max(0, 1-gap)
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
