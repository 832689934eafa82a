package matching

import (
	"time"

	"github.com/skillbridge/learnmatch/internal/domain"
	"github.com/skillbridge/learnmatch/internal/scoring"
)

// MinSkillMatch is the hard skill-overlap threshold for eligibility.
const MinSkillMatch = 0.6

// Eligibility is the outcome of the hard checks for one item. All checks
// run independently; Reasons lists every failed one.
type Eligibility struct {
	Eligible        bool     `json:"eligible"`
	SkillMatchScore float64  `json:"skill_match_score"`
	Reasons         []string `json:"reasons,omitempty"`
}

// CheckEligibility runs the hard constraints for an item against a learner.
// The evaluation time is passed in; nothing here reads the wall clock.
func CheckEligibility(item domain.CandidateItem, learner domain.LearnerProfile, now time.Time) Eligibility {
	skillScore := scoring.SkillMatch(item.RequiredSkills, learner.Skills)

	var reasons []string
	if item.Status != domain.StatusOpen {
		reasons = append(reasons, "not currently open")
	}
	if item.Deadline != nil && !item.Deadline.After(now) {
		reasons = append(reasons, "application deadline has passed")
	}
	if skillScore < MinSkillMatch {
		reasons = append(reasons, "insufficient skill match")
	}

	return Eligibility{
		Eligible:        len(reasons) == 0,
		SkillMatchScore: skillScore,
		Reasons:         reasons,
	}
}
