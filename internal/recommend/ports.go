package recommend

import (
	"context"
	"time"

	"github.com/skillbridge/learnmatch/internal/domain"
)

// ProfileStore provides learner profiles. Implementations return a
// NOT_FOUND application error for unknown learners and UNAVAILABLE when
// the backing store cannot be reached.
type ProfileStore interface {
	GetLearner(ctx context.Context, id string) (domain.LearnerProfile, error)
}

// CatalogFilter is the coarse pre-filter applied at fetch time, before any
// scoring happens. Zero values mean "no constraint".
type CatalogFilter struct {
	Kind          domain.ItemKind
	Statuses      []domain.ItemStatus
	DeadlineAfter *time.Time
	Category      string
	Location      string
	// MaxSkillRank caps course difficulty at the given proficiency rank.
	// Negative means no cap.
	MaxSkillRank int
	MaxResults   int
}

// CatalogStore provides candidate items for ranking.
type CatalogStore interface {
	QueryCandidates(ctx context.Context, f CatalogFilter) ([]domain.CandidateItem, error)
	CandidateByID(ctx context.Context, kind domain.ItemKind, id string) (domain.CandidateItem, error)
	CoursesByIDs(ctx context.Context, ids []string) ([]domain.Course, error)
}

// Clock is injected so deadline comparisons are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
