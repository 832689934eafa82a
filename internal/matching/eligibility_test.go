package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillbridge/learnmatch/internal/domain"
)

func TestCheckEligibility(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	learner := testLearner()

	t.Run("open item with enough skill overlap", func(t *testing.T) {
		item := domain.CandidateItem{
			ID:             "i-001",
			Status:         domain.StatusOpen,
			Deadline:       &future,
			RequiredSkills: []string{"React", "Node.js", "MongoDB"},
		}
		got := CheckEligibility(item, learner, now)
		assert.True(t, got.Eligible)
		assert.Empty(t, got.Reasons)
		assert.InDelta(t, 2.0/3.0, got.SkillMatchScore, 1e-9)
	})

	t.Run("closed item is never eligible", func(t *testing.T) {
		item := domain.CandidateItem{
			ID:             "i-002",
			Status:         domain.StatusClosed,
			Deadline:       &future,
			RequiredSkills: []string{"React"},
		}
		got := CheckEligibility(item, learner, now)
		assert.False(t, got.Eligible)
		assert.Equal(t, []string{"not currently open"}, got.Reasons)
	})

	t.Run("deadline exactly now has passed", func(t *testing.T) {
		item := domain.CandidateItem{
			ID:             "i-003",
			Status:         domain.StatusOpen,
			Deadline:       &now,
			RequiredSkills: []string{"React"},
		}
		got := CheckEligibility(item, learner, now)
		assert.False(t, got.Eligible)
		assert.Contains(t, got.Reasons, "application deadline has passed")
	})

	t.Run("no deadline means no deadline check", func(t *testing.T) {
		item := domain.CandidateItem{
			ID:             "i-004",
			Status:         domain.StatusOpen,
			RequiredSkills: []string{"React"},
		}
		got := CheckEligibility(item, learner, now)
		assert.True(t, got.Eligible)
	})

	t.Run("all failures are reported, not just the first", func(t *testing.T) {
		item := domain.CandidateItem{
			ID:             "i-005",
			Status:         domain.StatusClosed,
			Deadline:       &past,
			RequiredSkills: []string{"Kotlin", "Swift"},
		}
		got := CheckEligibility(item, learner, now)
		assert.False(t, got.Eligible)
		assert.Len(t, got.Reasons, 3)
	})

	t.Run("skill overlap below threshold", func(t *testing.T) {
		item := domain.CandidateItem{
			ID:             "i-006",
			Status:         domain.StatusOpen,
			Deadline:       &future,
			RequiredSkills: []string{"React", "Kotlin"},
		}
		got := CheckEligibility(item, learner, now)
		assert.False(t, got.Eligible)
		assert.Equal(t, []string{"insufficient skill match"}, got.Reasons)
		assert.InDelta(t, 0.5, got.SkillMatchScore, 1e-9)
	})
}
