package model

// Subject is an exam paper for one academic year.
type Subject struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	Year            int        `json:"year" yaml:"year"`
	DurationMinutes int        `json:"duration_minutes" yaml:"duration_minutes"`
	TotalMarks      int        `json:"total_marks" yaml:"total_marks"`
	Questions       []Question `json:"questions,omitempty" yaml:"questions"`
}

// SumMarks adds up the marks of every question. A valid subject has
// SumMarks() == TotalMarks.
func (s *Subject) SumMarks() int {
	total := 0
	for _, q := range s.Questions {
		total += q.Marks
	}
	return total
}

// Question looks up a question by ID.
func (s *Subject) Question(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// SubjectSummary is a subject without its questions, for listings.
type SubjectSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Year            int    `json:"year"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalMarks      int    `json:"total_marks"`
	QuestionCount   int    `json:"question_count"`
}

// Summary drops the question list.
func (s *Subject) Summary() SubjectSummary {
	return SubjectSummary{
		ID:              s.ID,
		Name:            s.Name,
		Year:            s.Year,
		DurationMinutes: s.DurationMinutes,
		TotalMarks:      s.TotalMarks,
		QuestionCount:   len(s.Questions),
	}
}
