package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skillbridge/learnmatch/internal/domain"
)

// LoadCoursesFromFile reads the course seed dataset from a JSON file.
func LoadCoursesFromFile(path string) ([]domain.Course, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read courses file: %w", err)
	}

	var courses []domain.Course
	if err := json.Unmarshal(b, &courses); err != nil {
		return nil, fmt.Errorf("unmarshal courses: %w", err)
	}
	return courses, nil
}

// LoadInternshipsFromFile reads the internship seed dataset from a JSON file.
func LoadInternshipsFromFile(path string) ([]domain.Internship, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read internships file: %w", err)
	}

	var internships []domain.Internship
	if err := json.Unmarshal(b, &internships); err != nil {
		return nil, fmt.Errorf("unmarshal internships: %w", err)
	}
	return internships, nil
}

// LoadLearnersFromFile reads the learner seed dataset from a JSON file.
func LoadLearnersFromFile(path string) ([]domain.LearnerProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read learners file: %w", err)
	}

	var learners []domain.LearnerProfile
	if err := json.Unmarshal(b, &learners); err != nil {
		return nil, fmt.Errorf("unmarshal learners: %w", err)
	}
	return learners, nil
}
