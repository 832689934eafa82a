package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/skillbridge/learnmatch/internal/apperr"
	"github.com/skillbridge/learnmatch/internal/domain"
	"github.com/skillbridge/learnmatch/internal/recommend"
)

// SQLiteStore backs both the catalog and the learner profiles. List-valued
// fields are stored as JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperr.NewUnavailable("open sqlite", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, apperr.NewUnavailable("set journal mode", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, apperr.NewUnavailable("enable foreign keys", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS learners (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  education TEXT NOT NULL DEFAULT '',
  preferred_location TEXT NOT NULL DEFAULT '',
  expected_compensation REAL NOT NULL DEFAULT 0,
  skills_json TEXT NOT NULL DEFAULT '{}'
);`,
		`CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  required_skills_json TEXT NOT NULL DEFAULT '[]',
  skill_level TEXT NOT NULL DEFAULT 'beginner',
  price REAL NOT NULL DEFAULT 0,
  rating REAL NOT NULL DEFAULT 0,
  enrollment_count INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'open'
);`,
		`CREATE TABLE IF NOT EXISTS internships (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  company TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  required_skills_json TEXT NOT NULL DEFAULT '[]',
  preferred_education TEXT NOT NULL DEFAULT '',
  compensation REAL NOT NULL DEFAULT 0,
  application_deadline TEXT,
  status TEXT NOT NULL DEFAULT 'open',
  positions INTEGER NOT NULL DEFAULT 1,
  application_count INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS applications (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL REFERENCES learners(id),
  internship_id TEXT NOT NULL REFERENCES internships(id),
  status TEXT NOT NULL DEFAULT 'pending',
  applied_at TEXT NOT NULL,
  feedback TEXT NOT NULL DEFAULT '',
  rating INTEGER NOT NULL DEFAULT 0,
  UNIQUE(learner_id, internship_id)
);`,
		`CREATE TABLE IF NOT EXISTS course_progress (
  learner_id TEXT NOT NULL REFERENCES learners(id),
  course_id TEXT NOT NULL REFERENCES courses(id),
  status TEXT NOT NULL DEFAULT 'in_progress',
  score REAL NOT NULL DEFAULT 0,
  completed_at TEXT,
  PRIMARY KEY (learner_id, course_id)
);`,
		`CREATE INDEX IF NOT EXISTS idx_courses_status ON courses(status);`,
		`CREATE INDEX IF NOT EXISTS idx_internships_status ON internships(status);`,
		`CREATE INDEX IF NOT EXISTS idx_internships_location ON internships(location);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_learner ON applications(learner_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return apperr.NewUnavailable("ensure schema", err)
		}
	}
	return nil
}

// ---- learners ----

func (s *SQLiteStore) UpsertLearners(ctx context.Context, learners []domain.LearnerProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.NewUnavailable("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO learners (id, name, education, preferred_location, expected_compensation, skills_json)
VALUES (?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return apperr.NewUnavailable("prepare learner insert", err)
	}
	defer stmt.Close()

	for _, l := range learners {
		skills, _ := json.Marshal(l.Skills)
		if _, err := stmt.ExecContext(ctx, l.ID, l.Name, string(l.Education), l.PreferredLocation, l.ExpectedCompensation, string(skills)); err != nil {
			return apperr.NewUnavailable("insert learner", err)
		}
	}
	return tx.Commit()
}

// GetLearner assembles the profile including the completed-course history
// from course_progress.
func (s *SQLiteStore) GetLearner(ctx context.Context, id string) (domain.LearnerProfile, error) {
	var p domain.LearnerProfile
	var education, skillsJSON string

	err := s.db.QueryRowContext(ctx, `
SELECT id, name, education, preferred_location, expected_compensation, skills_json
FROM learners WHERE id = ?
`, id).Scan(&p.ID, &p.Name, &education, &p.PreferredLocation, &p.ExpectedCompensation, &skillsJSON)
	if err == sql.ErrNoRows {
		return domain.LearnerProfile{}, apperr.NewNotFound("learner " + id + " not found")
	}
	if err != nil {
		return domain.LearnerProfile{}, apperr.NewUnavailable("get learner", err)
	}
	p.Education = domain.EducationLevel(education)
	_ = json.Unmarshal([]byte(skillsJSON), &p.Skills)

	rows, err := s.db.QueryContext(ctx, `
SELECT course_id, score, completed_at
FROM course_progress
WHERE learner_id = ? AND status = 'completed'
ORDER BY course_id
`, id)
	if err != nil {
		return domain.LearnerProfile{}, apperr.NewUnavailable("get learner history", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.CompletedItem
		var completedAt sql.NullString
		if err := rows.Scan(&c.ItemID, &c.Score, &completedAt); err != nil {
			return domain.LearnerProfile{}, apperr.NewUnavailable("scan learner history", err)
		}
		if completedAt.Valid {
			if t, perr := time.Parse(time.RFC3339, completedAt.String); perr == nil {
				c.CompletedAt = t
			}
		}
		p.Completed = append(p.Completed, c)
	}
	if err := rows.Err(); err != nil {
		return domain.LearnerProfile{}, apperr.NewUnavailable("scan learner history", err)
	}
	return p, nil
}

// ---- courses ----

func (s *SQLiteStore) UpsertCourses(ctx context.Context, items []domain.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.NewUnavailable("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO courses
(id, title, description, category, required_skills_json, skill_level, price, rating, enrollment_count, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return apperr.NewUnavailable("prepare course insert", err)
	}
	defer stmt.Close()

	for _, c := range items {
		skills, _ := json.Marshal(c.RequiredSkills)
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Title, c.Description, c.Category, string(skills),
			string(c.SkillLevel), c.Price, c.Rating, c.EnrollmentCount, string(c.Status),
		); err != nil {
			return apperr.NewUnavailable("insert course", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.StatusOpen
	}
	skills, _ := json.Marshal(c.RequiredSkills)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO courses
(id, title, description, category, required_skills_json, skill_level, price, rating, enrollment_count, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		c.ID, c.Title, c.Description, c.Category, string(skills),
		string(c.SkillLevel), c.Price, c.Rating, c.EnrollmentCount, string(c.Status),
	)
	if err != nil {
		return domain.Course{}, apperr.NewUnavailable("create course", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, description, category, required_skills_json, skill_level, price, rating, enrollment_count, status
FROM courses WHERE id = ?
`, id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return domain.Course{}, apperr.NewNotFound("course " + id + " not found")
	}
	if err != nil {
		return domain.Course{}, apperr.NewUnavailable("get course", err)
	}
	return c, nil
}

func (s *SQLiteStore) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return apperr.NewUnavailable("delete course", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NewNotFound("course " + id + " not found")
	}
	return nil
}

// CourseFilter mirrors the list endpoint's query parameters. SkillLevels,
// when set, restricts results to the given difficulty levels.
type CourseFilter struct {
	Category    string
	Status      string
	SkillLevels []string
	MinPrice    float64
	MaxPrice    float64
	SortBy      string
	Limit       int
	Offset      int
}

func (s *SQLiteStore) ListCourses(ctx context.Context, f CourseFilter) ([]domain.Course, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if strings.TrimSpace(f.Category) != "" {
		where = append(where, "LOWER(category) = LOWER(?)")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if len(f.SkillLevels) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.SkillLevels)), ",")
		where = append(where, "skill_level IN ("+placeholders+")")
		for _, lvl := range f.SkillLevels {
			args = append(args, lvl)
		}
	}
	if f.MinPrice > 0 {
		where = append(where, "price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "price <= ?")
		args = append(args, f.MaxPrice)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY id"
	switch f.SortBy {
	case "rating_desc":
		orderSQL = "ORDER BY rating DESC, id"
	case "price_asc":
		orderSQL = "ORDER BY price ASC, id"
	case "price_desc":
		orderSQL = "ORDER BY price DESC, id"
	case "popular":
		orderSQL = "ORDER BY enrollment_count DESC, id"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, apperr.NewUnavailable("count courses", err)
	}

	rowsSQL := `
SELECT id, title, description, category, required_skills_json, skill_level, price, rating, enrollment_count, status
FROM courses
` + whereSQL + "\n" + orderSQL + "\nLIMIT ? OFFSET ?"
	rowsArgs := append(append([]any{}, args...), f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, rowsSQL, rowsArgs...)
	if err != nil {
		return nil, 0, apperr.NewUnavailable("list courses", err)
	}
	defer rows.Close()

	var out []domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, apperr.NewUnavailable("scan course", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.NewUnavailable("list courses", err)
	}
	return out, total, nil
}

// ---- internships ----

func (s *SQLiteStore) UpsertInternships(ctx context.Context, items []domain.Internship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.NewUnavailable("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO internships
(id, title, company, description, category, location, required_skills_json, preferred_education, compensation, application_deadline, status, positions, application_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return apperr.NewUnavailable("prepare internship insert", err)
	}
	defer stmt.Close()

	for _, i := range items {
		skills, _ := json.Marshal(i.RequiredSkills)
		if _, err := stmt.ExecContext(ctx,
			i.ID, i.Title, i.Company, i.Description, i.Category, i.Location, string(skills),
			string(i.PreferredEducation), i.Compensation, deadlineText(i.Deadline),
			string(i.Status), i.Positions, i.ApplicationCount,
		); err != nil {
			return apperr.NewUnavailable("insert internship", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CreateInternship(ctx context.Context, i domain.Internship) (domain.Internship, error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Status == "" {
		i.Status = domain.StatusOpen
	}
	if i.Positions <= 0 {
		i.Positions = 1
	}
	skills, _ := json.Marshal(i.RequiredSkills)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO internships
(id, title, company, description, category, location, required_skills_json, preferred_education, compensation, application_deadline, status, positions, application_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		i.ID, i.Title, i.Company, i.Description, i.Category, i.Location, string(skills),
		string(i.PreferredEducation), i.Compensation, deadlineText(i.Deadline),
		string(i.Status), i.Positions, i.ApplicationCount,
	)
	if err != nil {
		return domain.Internship{}, apperr.NewUnavailable("create internship", err)
	}
	return i, nil
}

func (s *SQLiteStore) GetInternship(ctx context.Context, id string) (domain.Internship, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, company, description, category, location, required_skills_json, preferred_education, compensation, application_deadline, status, positions, application_count
FROM internships WHERE id = ?
`, id)
	i, err := scanInternship(row)
	if err == sql.ErrNoRows {
		return domain.Internship{}, apperr.NewNotFound("internship " + id + " not found")
	}
	if err != nil {
		return domain.Internship{}, apperr.NewUnavailable("get internship", err)
	}
	return i, nil
}

func (s *SQLiteStore) DeleteInternship(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM internships WHERE id = ?`, id)
	if err != nil {
		return apperr.NewUnavailable("delete internship", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NewNotFound("internship " + id + " not found")
	}
	return nil
}

// InternshipFilter mirrors the search endpoint's query parameters.
// DeadlineAfter keeps internships whose deadline is strictly later, or
// unset; deadlines are stored as RFC3339 UTC text so the comparison is
// lexicographic.
type InternshipFilter struct {
	Category        string
	Location        string
	Status          string
	DeadlineAfter   *time.Time
	MinCompensation float64
	MaxCompensation float64
	SortBy          string
	Limit           int
	Offset          int
}

func (s *SQLiteStore) ListInternships(ctx context.Context, f InternshipFilter) ([]domain.Internship, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if strings.TrimSpace(f.Category) != "" {
		where = append(where, "LOWER(category) = LOWER(?)")
		args = append(args, f.Category)
	}
	if strings.TrimSpace(f.Location) != "" {
		where = append(where, "LOWER(location) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.Location)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.DeadlineAfter != nil {
		where = append(where, "(application_deadline IS NULL OR application_deadline > ?)")
		args = append(args, f.DeadlineAfter.UTC().Format(time.RFC3339))
	}
	if f.MinCompensation > 0 {
		where = append(where, "compensation >= ?")
		args = append(args, f.MinCompensation)
	}
	if f.MaxCompensation > 0 {
		where = append(where, "compensation <= ?")
		args = append(args, f.MaxCompensation)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY id"
	switch f.SortBy {
	case "compensation_asc":
		orderSQL = "ORDER BY compensation ASC, id"
	case "compensation_desc":
		orderSQL = "ORDER BY compensation DESC, id"
	case "deadline_asc":
		orderSQL = "ORDER BY application_deadline ASC, id"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM internships "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, apperr.NewUnavailable("count internships", err)
	}

	rowsSQL := `
SELECT id, title, company, description, category, location, required_skills_json, preferred_education, compensation, application_deadline, status, positions, application_count
FROM internships
` + whereSQL + "\n" + orderSQL + "\nLIMIT ? OFFSET ?"
	rowsArgs := append(append([]any{}, args...), f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, rowsSQL, rowsArgs...)
	if err != nil {
		return nil, 0, apperr.NewUnavailable("list internships", err)
	}
	defer rows.Close()

	var out []domain.Internship
	for rows.Next() {
		i, err := scanInternship(rows)
		if err != nil {
			return nil, 0, apperr.NewUnavailable("scan internship", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.NewUnavailable("list internships", err)
	}
	return out, total, nil
}

// ---- applications ----

// CreateApplication inserts the application and bumps the internship's
// application count in one transaction. A duplicate (learner, internship)
// pair is a conflict.
func (s *SQLiteStore) CreateApplication(ctx context.Context, learnerID, internshipID string, appliedAt time.Time) (domain.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Application{}, apperr.NewUnavailable("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE learner_id = ? AND internship_id = ?`,
		learnerID, internshipID,
	).Scan(&existing); err != nil {
		return domain.Application{}, apperr.NewUnavailable("check existing application", err)
	}
	if existing > 0 {
		return domain.Application{}, apperr.NewConflict("already applied for this internship")
	}

	app := domain.Application{
		ID:           uuid.New().String(),
		LearnerID:    learnerID,
		InternshipID: internshipID,
		Status:       domain.ApplicationPending,
		AppliedAt:    appliedAt.UTC(),
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO applications (id, learner_id, internship_id, status, applied_at)
VALUES (?, ?, ?, ?, ?)
`, app.ID, app.LearnerID, app.InternshipID, string(app.Status), app.AppliedAt.Format(time.RFC3339)); err != nil {
		return domain.Application{}, apperr.NewUnavailable("insert application", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE internships SET application_count = application_count + 1 WHERE id = ?`,
		internshipID,
	); err != nil {
		return domain.Application{}, apperr.NewUnavailable("bump application count", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Application{}, apperr.NewUnavailable("commit application", err)
	}
	return app, nil
}

func (s *SQLiteStore) ListApplicationsByLearner(ctx context.Context, learnerID string) ([]domain.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, learner_id, internship_id, status, applied_at, feedback, rating
FROM applications WHERE learner_id = ?
ORDER BY applied_at DESC, id
`, learnerID)
	if err != nil {
		return nil, apperr.NewUnavailable("list applications", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		var a domain.Application
		var status, appliedAt string
		if err := rows.Scan(&a.ID, &a.LearnerID, &a.InternshipID, &status, &appliedAt, &a.Feedback, &a.Rating); err != nil {
			return nil, apperr.NewUnavailable("scan application", err)
		}
		a.Status = domain.ApplicationStatus(status)
		if t, perr := time.Parse(time.RFC3339, appliedAt); perr == nil {
			a.AppliedAt = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateApplication sets the status and, when provided, attaches feedback.
func (s *SQLiteStore) UpdateApplication(ctx context.Context, id string, status domain.ApplicationStatus, feedback string, rating int) (domain.Application, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE applications
SET status = ?,
    feedback = CASE WHEN ? != '' THEN ? ELSE feedback END,
    rating = CASE WHEN ? > 0 THEN ? ELSE rating END
WHERE id = ?
`, string(status), feedback, feedback, rating, rating, id)
	if err != nil {
		return domain.Application{}, apperr.NewUnavailable("update application", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return domain.Application{}, apperr.NewNotFound("application " + id + " not found")
	}

	var a domain.Application
	var st, appliedAt string
	err = s.db.QueryRowContext(ctx, `
SELECT id, learner_id, internship_id, status, applied_at, feedback, rating
FROM applications WHERE id = ?
`, id).Scan(&a.ID, &a.LearnerID, &a.InternshipID, &st, &appliedAt, &a.Feedback, &a.Rating)
	if err != nil {
		return domain.Application{}, apperr.NewUnavailable("reload application", err)
	}
	a.Status = domain.ApplicationStatus(st)
	if t, perr := time.Parse(time.RFC3339, appliedAt); perr == nil {
		a.AppliedAt = t
	}
	return a, nil
}

// ---- course progress ----

// UpsertProgress records course progress; a completed entry feeds the
// recommender's history filter.
func (s *SQLiteStore) UpsertProgress(ctx context.Context, learnerID, courseID, status string, score float64, completedAt *time.Time) error {
	var completed any
	if completedAt != nil {
		completed = completedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO course_progress (learner_id, course_id, status, score, completed_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(learner_id, course_id) DO UPDATE SET
  status = excluded.status,
  score = excluded.score,
  completed_at = excluded.completed_at
`, learnerID, courseID, status, score, completed)
	if err != nil {
		return apperr.NewUnavailable("upsert progress", err)
	}
	return nil
}

// ---- recommend.CatalogStore ----

// QueryCandidates returns the coarse-filtered candidate set for ranking.
func (s *SQLiteStore) QueryCandidates(ctx context.Context, f recommend.CatalogFilter) ([]domain.CandidateItem, error) {
	max := f.MaxResults
	if max <= 0 {
		max = recommend.DefaultFetchCap
	}

	switch f.Kind {
	case domain.KindCourse:
		courses, _, err := s.ListCourses(ctx, CourseFilter{
			Category:    f.Category,
			Status:      singleStatus(f.Statuses),
			SkillLevels: levelsAtOrBelow(f.MaxSkillRank),
			Limit:       max,
		})
		if err != nil {
			return nil, err
		}
		out := make([]domain.CandidateItem, 0, len(courses))
		for _, c := range courses {
			out = append(out, c.Candidate())
		}
		return out, nil

	case domain.KindInternship:
		internships, _, err := s.ListInternships(ctx, InternshipFilter{
			Category:      f.Category,
			Location:      f.Location,
			Status:        singleStatus(f.Statuses),
			DeadlineAfter: f.DeadlineAfter,
			Limit:         max,
		})
		if err != nil {
			return nil, err
		}
		out := make([]domain.CandidateItem, 0, len(internships))
		for _, i := range internships {
			out = append(out, i.Candidate())
		}
		return out, nil

	default:
		return nil, apperr.NewValidation("unknown candidate kind " + string(f.Kind))
	}
}

// levelsAtOrBelow expands a proficiency rank cap into the matching level
// names for an IN clause. A negative cap means no restriction.
func levelsAtOrBelow(maxRank int) []string {
	if maxRank < 0 {
		return nil
	}
	all := []domain.Proficiency{
		domain.ProficiencyBeginner,
		domain.ProficiencyIntermediate,
		domain.ProficiencyAdvanced,
		domain.ProficiencyExpert,
	}
	var out []string
	for _, lvl := range all {
		if lvl.Rank() <= maxRank {
			out = append(out, string(lvl))
		}
	}
	return out
}

func (s *SQLiteStore) CandidateByID(ctx context.Context, kind domain.ItemKind, id string) (domain.CandidateItem, error) {
	switch kind {
	case domain.KindCourse:
		c, err := s.GetCourse(ctx, id)
		if err != nil {
			return domain.CandidateItem{}, err
		}
		return c.Candidate(), nil
	case domain.KindInternship:
		i, err := s.GetInternship(ctx, id)
		if err != nil {
			return domain.CandidateItem{}, err
		}
		return i.Candidate(), nil
	default:
		return domain.CandidateItem{}, apperr.NewValidation("unknown candidate kind " + string(kind))
	}
}

func (s *SQLiteStore) CoursesByIDs(ctx context.Context, ids []string) ([]domain.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, description, category, required_skills_json, skill_level, price, rating, enrollment_count, status
FROM courses WHERE id IN (`+placeholders+`)
ORDER BY id
`, args...)
	if err != nil {
		return nil, apperr.NewUnavailable("get courses by ids", err)
	}
	defer rows.Close()

	var out []domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, apperr.NewUnavailable("scan course", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ---- scan helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(r rowScanner) (domain.Course, error) {
	var c domain.Course
	var skillsJSON, level, status string
	if err := r.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &skillsJSON,
		&level, &c.Price, &c.Rating, &c.EnrollmentCount, &status,
	); err != nil {
		return domain.Course{}, err
	}
	_ = json.Unmarshal([]byte(skillsJSON), &c.RequiredSkills)
	c.SkillLevel = domain.Proficiency(level)
	c.Status = domain.ItemStatus(status)
	return c, nil
}

func scanInternship(r rowScanner) (domain.Internship, error) {
	var i domain.Internship
	var skillsJSON, education, status string
	var deadline sql.NullString
	if err := r.Scan(
		&i.ID, &i.Title, &i.Company, &i.Description, &i.Category, &i.Location, &skillsJSON,
		&education, &i.Compensation, &deadline, &status, &i.Positions, &i.ApplicationCount,
	); err != nil {
		return domain.Internship{}, err
	}
	_ = json.Unmarshal([]byte(skillsJSON), &i.RequiredSkills)
	i.PreferredEducation = domain.EducationLevel(education)
	i.Status = domain.ItemStatus(status)
	if deadline.Valid {
		if t, err := time.Parse(time.RFC3339, deadline.String); err == nil {
			i.Deadline = &t
		}
	}
	return i, nil
}

func deadlineText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func singleStatus(statuses []domain.ItemStatus) string {
	if len(statuses) == 1 {
		return string(statuses[0])
	}
	return ""
}
