package domain

import "time"

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// Rank maps a proficiency to its position on the ordinal scale.
// Unknown values rank below beginner.
func (p Proficiency) Rank() int {
	switch p {
	case ProficiencyBeginner:
		return 0
	case ProficiencyIntermediate:
		return 1
	case ProficiencyAdvanced:
		return 2
	case ProficiencyExpert:
		return 3
	default:
		return -1
	}
}

type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationAssociate  EducationLevel = "associate"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationPhD        EducationLevel = "phd"
)

func (e EducationLevel) Rank() int {
	switch e {
	case EducationHighSchool:
		return 0
	case EducationAssociate:
		return 1
	case EducationBachelor:
		return 2
	case EducationMaster:
		return 3
	case EducationPhD:
		return 4
	default:
		return -1
	}
}

type ItemStatus string

const (
	StatusDraft    ItemStatus = "draft"
	StatusOpen     ItemStatus = "open"
	StatusClosed   ItemStatus = "closed"
	StatusArchived ItemStatus = "archived"
)

type ItemKind string

const (
	KindCourse     ItemKind = "course"
	KindInternship ItemKind = "internship"
)

type CompletedItem struct {
	ItemID      string    `json:"item_id"`
	Score       float64   `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type LearnerProfile struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	Education            EducationLevel         `json:"education"`
	PreferredLocation    string                 `json:"preferred_location"`
	ExpectedCompensation float64                `json:"expected_compensation"`
	Skills               map[string]Proficiency `json:"skills"`
	Completed            []CompletedItem        `json:"completed"`
}

// CompletedSet returns the identifiers of completed items for history lookups.
func (p LearnerProfile) CompletedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Completed))
	for _, c := range p.Completed {
		set[c.ItemID] = struct{}{}
	}
	return set
}

// HighestProficiency returns the best rank across the learner's skills,
// or -1 when the learner has none.
func (p LearnerProfile) HighestProficiency() int {
	best := -1
	for _, lvl := range p.Skills {
		if r := lvl.Rank(); r > best {
			best = r
		}
	}
	return best
}

type Course struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	RequiredSkills  []string    `json:"required_skills"`
	SkillLevel      Proficiency `json:"skill_level"`
	Price           float64     `json:"price"`
	Rating          float64     `json:"rating"`
	EnrollmentCount int         `json:"enrollment_count"`
	Status          ItemStatus  `json:"status"`
}

func (c Course) Candidate() CandidateItem {
	return CandidateItem{
		ID:             c.ID,
		Kind:           KindCourse,
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		RequiredSkills: c.RequiredSkills,
		Compensation:   c.Price,
		Status:         c.Status,
		Rating:         c.Rating,
		Popularity:     c.EnrollmentCount,
	}
}

type Internship struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Company            string         `json:"company"`
	Description        string         `json:"description"`
	Category           string         `json:"category"`
	Location           string         `json:"location"`
	RequiredSkills     []string       `json:"required_skills"`
	PreferredEducation EducationLevel `json:"preferred_education"`
	Compensation       float64        `json:"compensation"`
	Deadline           *time.Time     `json:"application_deadline,omitempty"`
	Status             ItemStatus     `json:"status"`
	Positions          int            `json:"positions"`
	ApplicationCount   int            `json:"application_count"`
}

func (i Internship) Candidate() CandidateItem {
	return CandidateItem{
		ID:                 i.ID,
		Kind:               KindInternship,
		Title:              i.Title,
		Description:        i.Description,
		Category:           i.Category,
		Location:           i.Location,
		RequiredSkills:     i.RequiredSkills,
		PreferredEducation: i.PreferredEducation,
		Compensation:       i.Compensation,
		Deadline:           i.Deadline,
		Status:             i.Status,
		Popularity:         i.ApplicationCount,
	}
}

// CandidateItem is the ranker's view of a course or internship.
type CandidateItem struct {
	ID                 string         `json:"id"`
	Kind               ItemKind       `json:"kind"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Category           string         `json:"category,omitempty"`
	Location           string         `json:"location,omitempty"`
	RequiredSkills     []string       `json:"required_skills"`
	PreferredEducation EducationLevel `json:"preferred_education,omitempty"`
	Compensation       float64        `json:"compensation"`
	Deadline           *time.Time     `json:"application_deadline,omitempty"`
	Status             ItemStatus     `json:"status"`
	Rating             float64        `json:"rating,omitempty"`
	Popularity         int            `json:"popularity,omitempty"`
}

// Recommendation is computed per request and never persisted.
type Recommendation struct {
	Item      CandidateItem      `json:"item"`
	Score     float64            `json:"score"`
	SubScores map[string]float64 `json:"sub_scores,omitempty"`
	Reason    string             `json:"reason"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID           string            `json:"id"`
	LearnerID    string            `json:"learner_id"`
	InternshipID string            `json:"internship_id"`
	Status       ApplicationStatus `json:"status"`
	AppliedAt    time.Time         `json:"applied_at"`
	Feedback     string            `json:"feedback,omitempty"`
	Rating       int               `json:"rating,omitempty"`
}
