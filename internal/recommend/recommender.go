// Package recommend composes the candidate fetch, eligibility gate, and
// ranker into the per-request recommendation flow. Everything here is a
// read-only computation over data fetched at request time; no state is
// shared between concurrent requests.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/skillbridge/learnmatch/internal/apperr"
	"github.com/skillbridge/learnmatch/internal/domain"
	"github.com/skillbridge/learnmatch/internal/matching"
	"github.com/skillbridge/learnmatch/internal/scoring"
)

// DefaultFetchCap bounds how many candidates are pulled for one request.
const DefaultFetchCap = 200

// DefaultCourseLimit mirrors the larger default used for course lists.
const DefaultCourseLimit = 10

// Course composite factors. Rating dominates, content similarity and
// popularity follow, skill overlap nudges.
const (
	courseWeightRating     = 0.4
	courseWeightSimilarity = 0.3
	courseWeightPopularity = 0.2
	courseWeightSkill      = 0.1
)

type Options struct {
	Limit            int
	IncludeCompleted bool
}

// Tuning carries the operator-configurable fetch and result bounds. Zero
// values fall back to the package defaults.
type Tuning struct {
	FetchCap        int
	InternshipLimit int
	CourseLimit     int
}

type Recommender struct {
	profiles        ProfileStore
	catalog         CatalogStore
	clock           Clock
	weights         matching.Weights
	fetchCap        int
	internshipLimit int
	courseLimit     int
	logger          *zap.Logger
}

// NewRecommender validates the weight configuration up front so a bad
// config fails before any request touches the stores.
func NewRecommender(profiles ProfileStore, catalog CatalogStore, clock Clock, weights matching.Weights, tuning Tuning, logger *zap.Logger) (*Recommender, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tuning.FetchCap <= 0 {
		tuning.FetchCap = DefaultFetchCap
	}
	if tuning.InternshipLimit <= 0 {
		tuning.InternshipLimit = matching.DefaultLimit
	}
	if tuning.CourseLimit <= 0 {
		tuning.CourseLimit = DefaultCourseLimit
	}
	return &Recommender{
		profiles:        profiles,
		catalog:         catalog,
		clock:           clock,
		weights:         weights,
		fetchCap:        tuning.FetchCap,
		internshipLimit: tuning.InternshipLimit,
		courseLimit:     tuning.CourseLimit,
		logger:          logger,
	}, nil
}

// RecommendInternships returns the top internships for a learner. This
// call site runs the eligibility gate in filter mode: ineligible items are
// dropped, not annotated.
func (r *Recommender) RecommendInternships(ctx context.Context, learnerID string, opts Options) ([]domain.Recommendation, error) {
	learner, err := r.profiles.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	candidates, err := r.catalog.QueryCandidates(ctx, CatalogFilter{
		Kind:          domain.KindInternship,
		Statuses:      []domain.ItemStatus{domain.StatusOpen},
		DeadlineAfter: &now,
		MaxSkillRank:  -1,
		MaxResults:    r.fetchCap,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "fetch internship candidates")
	}

	candidates = r.filterCompleted(candidates, learner, opts.IncludeCompleted)

	eligible := candidates[:0]
	for _, item := range candidates {
		check := matching.CheckEligibility(item, learner, now)
		if !check.Eligible {
			r.logger.Debug("candidate dropped by eligibility gate",
				zap.String("item_id", item.ID),
				zap.Strings("reasons", check.Reasons))
			continue
		}
		if len(item.RequiredSkills) == 0 {
			r.logger.Warn("candidate has no required skills, skill match degenerates to zero",
				zap.String("item_id", item.ID))
		}
		eligible = append(eligible, item)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = r.internshipLimit
	}
	return matching.Rank(eligible, learner, r.weights, limit), nil
}

// RecommendCourses returns the top courses for a learner, blending rating,
// content similarity against the learner's completed courses, popularity,
// and skill overlap. Courses are pre-filtered to difficulty levels the
// learner can take; the hard eligibility gate does not apply here.
func (r *Recommender) RecommendCourses(ctx context.Context, learnerID string, opts Options) ([]domain.Recommendation, error) {
	learner, err := r.profiles.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	maxRank := learner.HighestProficiency()
	if maxRank < 0 {
		maxRank = domain.ProficiencyBeginner.Rank()
	}

	candidates, err := r.catalog.QueryCandidates(ctx, CatalogFilter{
		Kind:         domain.KindCourse,
		Statuses:     []domain.ItemStatus{domain.StatusOpen},
		MaxSkillRank: maxRank,
		MaxResults:   r.fetchCap,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "fetch course candidates")
	}

	candidates = r.filterCompleted(candidates, learner, opts.IncludeCompleted)

	historyDoc, err := r.completedHistoryDoc(ctx, learner)
	if err != nil {
		return nil, apperr.Wrap(err, "fetch completed course history")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = r.courseLimit
	}
	return r.rankCourses(candidates, learner, historyDoc, limit), nil
}

// CheckInternshipEligibility is the annotated call site of the gate: the
// item is returned with its eligibility verdict and every failed reason.
func (r *Recommender) CheckInternshipEligibility(ctx context.Context, learnerID, internshipID string) (matching.Eligibility, error) {
	learner, err := r.profiles.GetLearner(ctx, learnerID)
	if err != nil {
		return matching.Eligibility{}, err
	}
	item, err := r.catalog.CandidateByID(ctx, domain.KindInternship, internshipID)
	if err != nil {
		return matching.Eligibility{}, err
	}
	return matching.CheckEligibility(item, learner, r.clock.Now()), nil
}

func (r *Recommender) filterCompleted(items []domain.CandidateItem, learner domain.LearnerProfile, includeCompleted bool) []domain.CandidateItem {
	if includeCompleted || len(learner.Completed) == 0 {
		return items
	}
	done := learner.CompletedSet()
	out := items[:0]
	for _, item := range items {
		if _, ok := done[item.ID]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

// completedHistoryDoc joins the descriptions of the learner's completed
// courses into one document for content similarity.
func (r *Recommender) completedHistoryDoc(ctx context.Context, learner domain.LearnerProfile) (string, error) {
	if len(learner.Completed) == 0 {
		return "", nil
	}
	ids := make([]string, 0, len(learner.Completed))
	for _, c := range learner.Completed {
		ids = append(ids, c.ItemID)
	}
	courses, err := r.catalog.CoursesByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(courses))
	for _, c := range courses {
		parts = append(parts, c.Title+" "+c.Description)
	}
	return strings.Join(parts, " "), nil
}

func (r *Recommender) rankCourses(candidates []domain.CandidateItem, learner domain.LearnerProfile, historyDoc string, limit int) []domain.Recommendation {
	if len(candidates) == 0 {
		return nil
	}

	// Corpus is scoped to this request; nothing leaks across calls.
	docs := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		docs = append(docs, c.Title+" "+c.Description)
	}
	if historyDoc != "" {
		docs = append(docs, historyDoc)
	} else {
		r.logger.Warn("learner has no completed courses, content similarity degenerates to zero",
			zap.String("learner_id", learner.ID))
	}
	corpus := scoring.NewCorpus(docs)

	maxPopularity := 0
	for _, c := range candidates {
		if c.Popularity > maxPopularity {
			maxPopularity = c.Popularity
		}
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for _, item := range candidates {
		similarity := 0.0
		if historyDoc != "" {
			similarity = scoring.Clamp01(corpus.Similarity(item.Title+" "+item.Description, historyDoc))
		}
		popularity := 0.0
		if maxPopularity > 0 {
			popularity = float64(item.Popularity) / float64(maxPopularity)
		}
		subs := map[string]float64{
			"rating":                  scoring.Clamp01(item.Rating / 5),
			"content_similarity":      similarity,
			"popularity":              popularity,
			matching.FactorSkillMatch: scoring.SkillMatch(item.RequiredSkills, learner.Skills),
		}
		composite := courseWeightRating*subs["rating"] +
			courseWeightSimilarity*subs["content_similarity"] +
			courseWeightPopularity*subs["popularity"] +
			courseWeightSkill*subs[matching.FactorSkillMatch]

		out = append(out, domain.Recommendation{
			Item:      item,
			Score:     math.Round(scoring.Clamp01(composite)*1000) / 1000,
			SubScores: subs,
			Reason:    courseReason(item, subs),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func courseReason(item domain.CandidateItem, subs map[string]float64) string {
	type contrib struct {
		key    string
		weight float64
	}
	ordered := []contrib{
		{"rating", courseWeightRating},
		{"content_similarity", courseWeightSimilarity},
		{"popularity", courseWeightPopularity},
		{matching.FactorSkillMatch, courseWeightSkill},
	}
	best := ordered[0].key
	bestContrib := -1.0
	for _, c := range ordered {
		v := c.weight * subs[c.key]
		if v > bestContrib {
			best = c.key
			bestContrib = v
		}
	}
	switch best {
	case "rating":
		return fmt.Sprintf("highly rated (%.1f/5)", item.Rating)
	case "content_similarity":
		return "similar to courses you completed"
	case "popularity":
		return "popular with other learners"
	default:
		if len(item.RequiredSkills) > 0 {
			return fmt.Sprintf("builds on your %s skills", item.RequiredSkills[0])
		}
		return "builds on your skills"
	}
}
