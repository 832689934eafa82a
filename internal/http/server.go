package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillbridge/learnmatch/internal/apperr"
	"github.com/skillbridge/learnmatch/internal/domain"
	"github.com/skillbridge/learnmatch/internal/recommend"
	"github.com/skillbridge/learnmatch/internal/storage"
)

// Server wires the catalog store and the recommender behind the REST API.
type Server struct {
	store    *storage.SQLiteStore
	rec      *recommend.Recommender
	logger   *zap.Logger
	validate *validator.Validate
}

func NewServer(store *storage.SQLiteStore, rec *recommend.Recommender, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:    store,
		rec:      rec,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", s.handleCoursesList)
			r.Post("/", s.handleCourseCreate)
			r.Get("/{courseID}", s.handleCourseGet)
			r.Delete("/{courseID}", s.handleCourseDelete)
		})

		r.Route("/internships", func(r chi.Router) {
			r.Get("/", s.handleInternshipsList)
			r.Post("/", s.handleInternshipCreate)
			r.Get("/{internshipID}", s.handleInternshipGet)
			r.Delete("/{internshipID}", s.handleInternshipDelete)
			r.Post("/{internshipID}/applications", s.handleApply)
		})

		r.Patch("/applications/{applicationID}", s.handleApplicationUpdate)

		r.Route("/learners/{learnerID}", func(r chi.Router) {
			r.Get("/applications", s.handleLearnerApplications)
			r.Post("/progress", s.handleProgressUpsert)
			r.Get("/recommendations/internships", s.handleInternshipRecommendations)
			r.Get("/recommendations/courses", s.handleCourseRecommendations)
			r.Get("/eligibility/internships/{internshipID}", s.handleEligibilityCheck)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- courses ----

type coursesListResponse struct {
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Total  int             `json:"total"`
	Items  []domain.Course `json:"items"`
}

func (s *Server) handleCoursesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parseLimitOffset(r, 20, 0)

	courses, total, err := s.store.ListCourses(r.Context(), storage.CourseFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		MinPrice: parseFloat(q.Get("min_price")),
		MaxPrice: parseFloat(q.Get("max_price")),
		SortBy:   q.Get("sort"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	writeJSON(w, http.StatusOK, coursesListResponse{Limit: limit, Offset: offset, Total: total, Items: courses})
}

type createCourseRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=100"`
	Description     string   `json:"description" validate:"max=2000"`
	Category        string   `json:"category"`
	RequiredSkills  []string `json:"required_skills"`
	SkillLevel      string   `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Price           float64  `json:"price" validate:"gte=0"`
	Rating          float64  `json:"rating" validate:"gte=0,lte=5"`
	EnrollmentCount int      `json:"enrollment_count" validate:"gte=0"`
}

func (s *Server) handleCourseCreate(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	level := domain.Proficiency(req.SkillLevel)
	if req.SkillLevel == "" {
		level = domain.ProficiencyBeginner
	}
	course, err := s.store.CreateCourse(r.Context(), domain.Course{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		RequiredSkills:  req.RequiredSkills,
		SkillLevel:      level,
		Price:           req.Price,
		Rating:          req.Rating,
		EnrollmentCount: req.EnrollmentCount,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (s *Server) handleCourseGet(w http.ResponseWriter, r *http.Request) {
	course, err := s.store.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleCourseDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCourse(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---- internships ----

type internshipsListResponse struct {
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
	Total  int                 `json:"total"`
	Items  []domain.Internship `json:"items"`
}

func (s *Server) handleInternshipsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parseLimitOffset(r, 20, 0)

	internships, total, err := s.store.ListInternships(r.Context(), storage.InternshipFilter{
		Category:        q.Get("category"),
		Location:        q.Get("location"),
		Status:          q.Get("status"),
		MinCompensation: parseFloat(q.Get("min_compensation")),
		MaxCompensation: parseFloat(q.Get("max_compensation")),
		SortBy:          q.Get("sort"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if internships == nil {
		internships = []domain.Internship{}
	}
	writeJSON(w, http.StatusOK, internshipsListResponse{Limit: limit, Offset: offset, Total: total, Items: internships})
}

type createInternshipRequest struct {
	Title              string     `json:"title" validate:"required,min=5,max=100"`
	Company            string     `json:"company" validate:"required,min=2,max=100"`
	Description        string     `json:"description" validate:"max=2000"`
	Category           string     `json:"category"`
	Location           string     `json:"location" validate:"required"`
	RequiredSkills     []string   `json:"required_skills"`
	PreferredEducation string     `json:"preferred_education" validate:"omitempty,oneof=high_school associate bachelor master phd"`
	Compensation       float64    `json:"compensation" validate:"gte=0"`
	Deadline           *time.Time `json:"application_deadline"`
	Positions          int        `json:"positions" validate:"gte=0"`
}

func (s *Server) handleInternshipCreate(w http.ResponseWriter, r *http.Request) {
	var req createInternshipRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	internship, err := s.store.CreateInternship(r.Context(), domain.Internship{
		Title:              req.Title,
		Company:            req.Company,
		Description:        req.Description,
		Category:           req.Category,
		Location:           req.Location,
		RequiredSkills:     req.RequiredSkills,
		PreferredEducation: domain.EducationLevel(req.PreferredEducation),
		Compensation:       req.Compensation,
		Deadline:           req.Deadline,
		Positions:          req.Positions,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, internship)
}

func (s *Server) handleInternshipGet(w http.ResponseWriter, r *http.Request) {
	internship, err := s.store.GetInternship(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, internship)
}

func (s *Server) handleInternshipDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInternship(r.Context(), chi.URLParam(r, "internshipID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---- applications ----

type applyRequest struct {
	LearnerID string `json:"learner_id" validate:"required"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	internshipID := chi.URLParam(r, "internshipID")

	// Both sides must exist before the insert so FK errors don't leak out
	// as 503s.
	if _, err := s.store.GetInternship(r.Context(), internshipID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.GetLearner(r.Context(), req.LearnerID); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.CreateApplication(r.Context(), req.LearnerID, internshipID, time.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleLearnerApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.store.ListApplicationsByLearner(r.Context(), chi.URLParam(r, "learnerID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": apps})
}

type updateApplicationRequest struct {
	Status   string `json:"status" validate:"required,oneof=pending accepted rejected"`
	Feedback string `json:"feedback" validate:"max=2000"`
	Rating   int    `json:"rating" validate:"gte=0,lte=5"`
}

func (s *Server) handleApplicationUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateApplicationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	app, err := s.store.UpdateApplication(r.Context(), chi.URLParam(r, "applicationID"),
		domain.ApplicationStatus(req.Status), req.Feedback, req.Rating)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// ---- course progress ----

type progressRequest struct {
	CourseID string  `json:"course_id" validate:"required"`
	Status   string  `json:"status" validate:"required,oneof=in_progress completed"`
	Score    float64 `json:"score" validate:"gte=0,lte=100"`
}

func (s *Server) handleProgressUpsert(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	learnerID := chi.URLParam(r, "learnerID")

	if _, err := s.store.GetLearner(r.Context(), learnerID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.GetCourse(r.Context(), req.CourseID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var completedAt *time.Time
	if req.Status == "completed" {
		now := time.Now()
		completedAt = &now
	}
	if err := s.store.UpsertProgress(r.Context(), learnerID, req.CourseID, req.Status, req.Score, completedAt); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// ---- recommendations ----

type recommendationsResponse struct {
	LearnerID string                  `json:"learner_id"`
	Items     []domain.Recommendation `json:"items"`
}

func (s *Server) handleInternshipRecommendations(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	opts := recommend.Options{
		Limit:            parseInt(r.URL.Query().Get("limit")),
		IncludeCompleted: r.URL.Query().Get("include_completed") == "true",
	}

	recs, err := s.rec.RecommendInternships(r.Context(), learnerID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{LearnerID: learnerID, Items: recs})
}

func (s *Server) handleCourseRecommendations(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	opts := recommend.Options{
		Limit:            parseInt(r.URL.Query().Get("limit")),
		IncludeCompleted: r.URL.Query().Get("include_completed") == "true",
	}

	recs, err := s.rec.RecommendCourses(r.Context(), learnerID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{LearnerID: learnerID, Items: recs})
}

func (s *Server) handleEligibilityCheck(w http.ResponseWriter, r *http.Request) {
	check, err := s.rec.CheckInternshipEligibility(r.Context(),
		chi.URLParam(r, "learnerID"), chi.URLParam(r, "internshipID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// ---- helpers ----

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
	case apperr.IsValidation(err):
		status = http.StatusBadRequest
	case apperr.IsConflict(err):
		status = http.StatusConflict
	case apperr.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

func parseInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
