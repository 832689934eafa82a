package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/learnmatch/internal/apperr"
	"github.com/skillbridge/learnmatch/internal/domain"
	"github.com/skillbridge/learnmatch/internal/recommend"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema())
	return s
}

func seedLearner(t *testing.T, s *SQLiteStore) domain.LearnerProfile {
	t.Helper()
	l := domain.LearnerProfile{
		ID:                   "l-001",
		Name:                 "Mara Jansen",
		Education:            domain.EducationBachelor,
		PreferredLocation:    "Berlin",
		ExpectedCompensation: 1900,
		Skills: map[string]domain.Proficiency{
			"React":   domain.ProficiencyAdvanced,
			"Node.js": domain.ProficiencyIntermediate,
		},
	}
	require.NoError(t, s.UpsertLearners(context.Background(), []domain.LearnerProfile{l}))
	return l
}

func TestLearnerRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	want := seedLearner(t, s)

	got, err := s.GetLearner(context.Background(), "l-001")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Education, got.Education)
	assert.Equal(t, want.ExpectedCompensation, got.ExpectedCompensation)
	assert.Equal(t, want.Skills, got.Skills)
	assert.Empty(t, got.Completed)

	_, err = s.GetLearner(context.Background(), "l-missing")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCourseCRUD(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateCourse(ctx, domain.Course{
		Title:          "React Fundamentals",
		Description:    "components hooks and state",
		Category:       "frontend",
		RequiredSkills: []string{"JavaScript"},
		SkillLevel:     domain.ProficiencyBeginner,
		Price:          49,
		Rating:         4.6,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "missing IDs are generated")
	assert.Equal(t, domain.StatusOpen, created.Status, "status defaults to open")

	got, err := s.GetCourse(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, []string{"JavaScript"}, got.RequiredSkills)

	require.NoError(t, s.DeleteCourse(ctx, created.ID))
	err = s.DeleteCourse(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListCoursesFilterAndSort(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCourses(ctx, []domain.Course{
		{ID: "c-001", Title: "React Fundamentals", Category: "frontend", Price: 49, Rating: 4.6, Status: domain.StatusOpen},
		{ID: "c-002", Title: "Advanced React Patterns", Category: "frontend", Price: 89, Rating: 4.8, Status: domain.StatusOpen},
		{ID: "c-003", Title: "Data Analysis", Category: "data", Price: 39, Rating: 4.4, Status: domain.StatusArchived},
	}))

	frontend, total, err := s.ListCourses(ctx, CourseFilter{Category: "Frontend", SortBy: "rating_desc"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, frontend, 2)
	assert.Equal(t, "c-002", frontend[0].ID)

	open, total, err := s.ListCourses(ctx, CourseFilter{Status: "open"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, open, 2)

	cheap, _, err := s.ListCourses(ctx, CourseFilter{MaxPrice: 50, SortBy: "price_asc"})
	require.NoError(t, err)
	require.Len(t, cheap, 2)
	assert.Equal(t, "c-003", cheap[0].ID)

	paged, total, err := s.ListCourses(ctx, CourseFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "total counts all matches, not the page")
	require.Len(t, paged, 1)
	assert.Equal(t, "c-002", paged[0].ID)
}

func TestListInternshipsFilterAndSort(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	deadline := time.Date(2027, 3, 31, 23, 59, 59, 0, time.UTC)
	require.NoError(t, s.UpsertInternships(ctx, []domain.Internship{
		{ID: "i-001", Title: "Frontend Intern", Category: "frontend", Location: "Berlin", Compensation: 1800, Deadline: &deadline, Status: domain.StatusOpen},
		{ID: "i-002", Title: "Full-Stack Intern", Category: "fullstack", Location: "Amsterdam", Compensation: 2000, Status: domain.StatusOpen},
		{ID: "i-003", Title: "Mobile Intern", Category: "mobile", Location: "Berlin", Compensation: 1700, Status: domain.StatusClosed},
	}))

	berlin, total, err := s.ListInternships(ctx, InternshipFilter{Location: "berl"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, berlin, 2)

	wellPaid, _, err := s.ListInternships(ctx, InternshipFilter{MinCompensation: 1800, SortBy: "compensation_desc"})
	require.NoError(t, err)
	require.Len(t, wellPaid, 2)
	assert.Equal(t, "i-002", wellPaid[0].ID)

	got, err := s.GetInternship(ctx, "i-001")
	require.NoError(t, err)
	require.NotNil(t, got.Deadline)
	assert.True(t, got.Deadline.Equal(deadline))
}

func TestApplicationsLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	seedLearner(t, s)
	require.NoError(t, s.UpsertInternships(ctx, []domain.Internship{
		{ID: "i-001", Title: "Frontend Intern", Status: domain.StatusOpen, ApplicationCount: 14},
	}))

	appliedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	app, err := s.CreateApplication(ctx, "l-001", "i-001", appliedAt)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, domain.ApplicationPending, app.Status)

	_, err = s.CreateApplication(ctx, "l-001", "i-001", appliedAt)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err), "second application for the same internship is a conflict")

	internship, err := s.GetInternship(ctx, "i-001")
	require.NoError(t, err)
	assert.Equal(t, 15, internship.ApplicationCount)

	list, err := s.ListApplicationsByLearner(ctx, "l-001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, app.ID, list[0].ID)
	assert.True(t, list[0].AppliedAt.Equal(appliedAt))

	updated, err := s.UpdateApplication(ctx, app.ID, domain.ApplicationAccepted, "strong portfolio", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, updated.Status)
	assert.Equal(t, "strong portfolio", updated.Feedback)
	assert.Equal(t, 5, updated.Rating)

	// Empty feedback and zero rating leave the stored values alone.
	kept, err := s.UpdateApplication(ctx, app.ID, domain.ApplicationRejected, "", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, kept.Status)
	assert.Equal(t, "strong portfolio", kept.Feedback)
	assert.Equal(t, 5, kept.Rating)

	_, err = s.UpdateApplication(ctx, "a-missing", domain.ApplicationAccepted, "", 0)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestProgressFeedsLearnerHistory(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	seedLearner(t, s)
	require.NoError(t, s.UpsertCourses(ctx, []domain.Course{
		{ID: "c-001", Title: "React Fundamentals", Status: domain.StatusOpen},
	}))

	require.NoError(t, s.UpsertProgress(ctx, "l-001", "c-001", "in_progress", 40, nil))

	learner, err := s.GetLearner(ctx, "l-001")
	require.NoError(t, err)
	assert.Empty(t, learner.Completed, "in-progress courses are not history")

	done := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertProgress(ctx, "l-001", "c-001", "completed", 92, &done))

	learner, err = s.GetLearner(ctx, "l-001")
	require.NoError(t, err)
	require.Len(t, learner.Completed, 1)
	assert.Equal(t, "c-001", learner.Completed[0].ItemID)
	assert.Equal(t, 92.0, learner.Completed[0].Score)
	assert.True(t, learner.Completed[0].CompletedAt.Equal(done))
}

func TestQueryCandidates(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	deadline := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)
	expired := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertInternships(ctx, []domain.Internship{
		{ID: "i-001", Title: "Frontend Intern", Deadline: &deadline, Status: domain.StatusOpen},
		{ID: "i-002", Title: "Expired Intern", Deadline: &expired, Status: domain.StatusOpen},
		{ID: "i-003", Title: "Closed Intern", Status: domain.StatusClosed},
	}))
	require.NoError(t, s.UpsertCourses(ctx, []domain.Course{
		{ID: "c-001", Title: "Basics", SkillLevel: domain.ProficiencyBeginner, Status: domain.StatusOpen},
		{ID: "c-002", Title: "Advanced", SkillLevel: domain.ProficiencyAdvanced, Status: domain.StatusOpen},
		{ID: "c-003", Title: "Archived", SkillLevel: domain.ProficiencyBeginner, Status: domain.StatusArchived},
	}))

	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	internships, err := s.QueryCandidates(ctx, recommend.CatalogFilter{
		Kind:          domain.KindInternship,
		Statuses:      []domain.ItemStatus{domain.StatusOpen},
		DeadlineAfter: &now,
		MaxSkillRank:  -1,
	})
	require.NoError(t, err)
	require.Len(t, internships, 1)
	assert.Equal(t, "i-001", internships[0].ID)

	courses, err := s.QueryCandidates(ctx, recommend.CatalogFilter{
		Kind:         domain.KindCourse,
		Statuses:     []domain.ItemStatus{domain.StatusOpen},
		MaxSkillRank: domain.ProficiencyIntermediate.Rank(),
	})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c-001", courses[0].ID)

	_, err = s.QueryCandidates(ctx, recommend.CatalogFilter{Kind: "widget"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestQueryCandidatesLimitAppliesAfterFilters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	deadline := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)
	expired := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertInternships(ctx, []domain.Internship{
		{ID: "i-001", Title: "Expired Intern", Deadline: &expired, Status: domain.StatusOpen},
		{ID: "i-002", Title: "Frontend Intern", Deadline: &deadline, Status: domain.StatusOpen},
		{ID: "i-003", Title: "Backend Intern", Status: domain.StatusOpen},
	}))
	require.NoError(t, s.UpsertCourses(ctx, []domain.Course{
		{ID: "c-001", Title: "Too Hard", SkillLevel: domain.ProficiencyAdvanced, Status: domain.StatusOpen},
		{ID: "c-002", Title: "Basics", SkillLevel: domain.ProficiencyBeginner, Status: domain.StatusOpen},
		{ID: "c-003", Title: "More Basics", SkillLevel: domain.ProficiencyBeginner, Status: domain.StatusOpen},
	}))

	// Rows failing the predicates must not consume result slots.
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	internships, err := s.QueryCandidates(ctx, recommend.CatalogFilter{
		Kind:          domain.KindInternship,
		Statuses:      []domain.ItemStatus{domain.StatusOpen},
		DeadlineAfter: &now,
		MaxSkillRank:  -1,
		MaxResults:    2,
	})
	require.NoError(t, err)
	require.Len(t, internships, 2)
	assert.Equal(t, "i-002", internships[0].ID)
	assert.Equal(t, "i-003", internships[1].ID, "deadline-free internships stay in")

	courses, err := s.QueryCandidates(ctx, recommend.CatalogFilter{
		Kind:         domain.KindCourse,
		Statuses:     []domain.ItemStatus{domain.StatusOpen},
		MaxSkillRank: domain.ProficiencyBeginner.Rank(),
		MaxResults:   2,
	})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "c-002", courses[0].ID)
	assert.Equal(t, "c-003", courses[1].ID)
}

func TestCandidateByID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCourses(ctx, []domain.Course{
		{ID: "c-001", Title: "Basics", Rating: 4.2, EnrollmentCount: 50, Status: domain.StatusOpen},
	}))

	got, err := s.CandidateByID(ctx, domain.KindCourse, "c-001")
	require.NoError(t, err)
	assert.Equal(t, domain.KindCourse, got.Kind)
	assert.Equal(t, 4.2, got.Rating)
	assert.Equal(t, 50, got.Popularity)

	_, err = s.CandidateByID(ctx, domain.KindInternship, "i-missing")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCoursesByIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCourses(ctx, []domain.Course{
		{ID: "c-001", Title: "Basics", Status: domain.StatusOpen},
		{ID: "c-002", Title: "Advanced", Status: domain.StatusOpen},
	}))

	got, err := s.CoursesByIDs(ctx, []string{"c-002", "c-missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-002", got[0].ID)

	none, err := s.CoursesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
