package matching

import (
	"fmt"
	"math"

	"github.com/skillbridge/learnmatch/internal/apperr"
)

// Factor keys as they appear in sub-score maps and reason templates.
const (
	FactorSkillMatch   = "skill_match"
	FactorEducation    = "education"
	FactorLocation     = "location"
	FactorCompensation = "compensation"
)

// Weights defines the coefficients of the composite internship score.
// Values summing to 1.0 keep the composite in [0,1]; that is the caller's
// responsibility and is not rescaled here.
type Weights struct {
	SkillMatch   float64 `json:"skill_match" koanf:"skill_match"`
	Education    float64 `json:"education" koanf:"education"`
	Location     float64 `json:"location" koanf:"location"`
	Compensation float64 `json:"compensation" koanf:"compensation"`
}

// DefaultWeights returns the production baseline.
func DefaultWeights() Weights {
	return Weights{
		SkillMatch:   0.4,
		Education:    0.3,
		Location:     0.2,
		Compensation: 0.1,
	}
}

// Validate rejects malformed weight sets before any data is fetched.
func (w Weights) Validate() error {
	for _, f := range []struct {
		key string
		val float64
	}{
		{FactorSkillMatch, w.SkillMatch},
		{FactorEducation, w.Education},
		{FactorLocation, w.Location},
		{FactorCompensation, w.Compensation},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return apperr.NewInvalidConfig(fmt.Sprintf("weight %q is not a finite number", f.key))
		}
		if f.val < 0 {
			return apperr.NewInvalidConfig(fmt.Sprintf("weight %q must not be negative", f.key))
		}
	}
	if w.SkillMatch+w.Education+w.Location+w.Compensation == 0 {
		return apperr.NewInvalidConfig("at least one weight must be positive")
	}
	return nil
}
