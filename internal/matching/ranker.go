package matching

import (
	"fmt"
	"math"
	"sort"

	"github.com/skillbridge/learnmatch/internal/domain"
	"github.com/skillbridge/learnmatch/internal/scoring"
)

// DefaultLimit caps the result size when the caller does not ask for one.
const DefaultLimit = 5

// Rank computes the weighted composite score for each candidate, sorts
// descending, and truncates to limit. Exact ties are broken by candidate ID
// ascending so two identical calls return identical sequences.
//
// Weights are assumed valid (see Weights.Validate); callers should have
// rejected bad configurations before fetching any data.
func Rank(candidates []domain.CandidateItem, learner domain.LearnerProfile, w Weights, limit int) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(candidates))

	for _, item := range candidates {
		subs := subScores(item, learner)
		composite := w.SkillMatch*subs[FactorSkillMatch] +
			w.Education*subs[FactorEducation] +
			w.Location*subs[FactorLocation] +
			w.Compensation*subs[FactorCompensation]

		out = append(out, domain.Recommendation{
			Item:      item,
			Score:     round3(scoring.Clamp01(composite)),
			SubScores: subs,
			Reason:    reasonFor(item, topFactor(subs, w)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Item.ID < out[j].Item.ID
	})

	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func subScores(item domain.CandidateItem, learner domain.LearnerProfile) map[string]float64 {
	return map[string]float64{
		FactorSkillMatch:   scoring.SkillMatch(item.RequiredSkills, learner.Skills),
		FactorEducation:    scoring.EducationScore(learner.Education, item.PreferredEducation),
		FactorLocation:     scoring.LocationScore(learner.PreferredLocation, item.Location),
		FactorCompensation: scoring.CompensationScore(learner.ExpectedCompensation, item.Compensation),
	}
}

// topFactor picks the factor with the largest weighted contribution. Ties
// resolve in a fixed factor order to keep reasons deterministic.
func topFactor(subs map[string]float64, w Weights) string {
	ordered := []struct {
		key    string
		weight float64
	}{
		{FactorSkillMatch, w.SkillMatch},
		{FactorEducation, w.Education},
		{FactorLocation, w.Location},
		{FactorCompensation, w.Compensation},
	}

	best := ordered[0].key
	bestContrib := -1.0
	for _, f := range ordered {
		contrib := f.weight * subs[f.key]
		if contrib > bestContrib {
			best = f.key
			bestContrib = contrib
		}
	}
	return best
}

func reasonFor(item domain.CandidateItem, factor string) string {
	switch factor {
	case FactorSkillMatch:
		if len(item.RequiredSkills) > 0 {
			return fmt.Sprintf("matches your %s skills", item.RequiredSkills[0])
		}
		return "matches your skill set"
	case FactorEducation:
		return "fits your education level"
	case FactorLocation:
		if item.Location != "" {
			return fmt.Sprintf("located in %s", item.Location)
		}
		return "matches your location preference"
	case FactorCompensation:
		return "compensation close to your expectation"
	default:
		return "good overall match"
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
