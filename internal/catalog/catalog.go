// Package catalog holds the read-only exam data: subjects with their
// questions, exam schedules, the student roster and the admin login.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/schedule"
	"gopkg.in/yaml.v3"
)

// Catalog is seeded at startup and never mutated afterwards.
type Catalog struct {
	Subjects  []model.Subject        `yaml:"subjects"`
	Schedules []model.Schedule       `yaml:"schedules"`
	Students  []model.Student        `yaml:"students"`
	Admin     model.AdminCredentials `yaml:"admin"`
}

// Load reads a YAML catalog file and validates it.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the invariants the rest of the service relies on.
// All violations are reported together.
func (c *Catalog) Validate() error {
	var errs []error

	subjectIDs := make(map[string]bool, len(c.Subjects))
	for _, s := range c.Subjects {
		if s.ID == "" {
			errs = append(errs, errors.New("subject with empty id"))
			continue
		}
		if subjectIDs[s.ID] {
			errs = append(errs, fmt.Errorf("subject %s: duplicate id", s.ID))
		}
		subjectIDs[s.ID] = true

		if s.DurationMinutes <= 0 {
			errs = append(errs, fmt.Errorf("subject %s: duration must be positive", s.ID))
		}
		if len(s.Questions) == 0 {
			errs = append(errs, fmt.Errorf("subject %s: no questions", s.ID))
		}
		if sum := s.SumMarks(); sum != s.TotalMarks {
			errs = append(errs, fmt.Errorf("subject %s: total marks %d but questions sum to %d", s.ID, s.TotalMarks, sum))
		}

		questionIDs := make(map[string]bool, len(s.Questions))
		for _, q := range s.Questions {
			if questionIDs[q.ID] {
				errs = append(errs, fmt.Errorf("subject %s: duplicate question %s", s.ID, q.ID))
			}
			questionIDs[q.ID] = true
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				errs = append(errs, fmt.Errorf("question %s: correct answer %d outside %d options", q.ID, q.CorrectAnswer, len(q.Options)))
			}
			if q.Marks < 0 {
				errs = append(errs, fmt.Errorf("question %s: negative marks", q.ID))
			}
		}
	}

	for _, sc := range c.Schedules {
		if !subjectIDs[sc.SubjectID] {
			errs = append(errs, fmt.Errorf("schedule %s: unknown subject %s", sc.ID, sc.SubjectID))
		}
		if _, _, err := schedule.Window(sc, time.Local); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", sc.ID, err))
		}
	}

	studentIDs := make(map[string]bool, len(c.Students))
	rolls := make(map[string]bool, len(c.Students))
	for _, st := range c.Students {
		if studentIDs[st.ID] {
			errs = append(errs, fmt.Errorf("student %s: duplicate id", st.ID))
		}
		studentIDs[st.ID] = true
		if st.RollNumber == "" {
			errs = append(errs, fmt.Errorf("student %s: empty roll number", st.ID))
		}
		if rolls[st.RollNumber] {
			errs = append(errs, fmt.Errorf("student %s: duplicate roll number %s", st.ID, st.RollNumber))
		}
		rolls[st.RollNumber] = true
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("admin credentials are not set"))
	}

	return errors.Join(errs...)
}

// Subject returns the subject with the given ID.
func (c *Catalog) Subject(id string) (*model.Subject, bool) {
	for i := range c.Subjects {
		if c.Subjects[i].ID == id {
			return &c.Subjects[i], true
		}
	}
	return nil, false
}

// SubjectsForYear returns the subjects targeting an academic year, in catalog order.
func (c *Catalog) SubjectsForYear(year int) []*model.Subject {
	var out []*model.Subject
	for i := range c.Subjects {
		if c.Subjects[i].Year == year {
			out = append(out, &c.Subjects[i])
		}
	}
	return out
}

// ScheduleFor returns the first schedule of a subject. The model permits
// several, in practice there is one per subject.
func (c *Catalog) ScheduleFor(subjectID string) (*model.Schedule, bool) {
	for i := range c.Schedules {
		if c.Schedules[i].SubjectID == subjectID {
			return &c.Schedules[i], true
		}
	}
	return nil, false
}

// StudentByID looks up a roster entry by ID.
func (c *Catalog) StudentByID(id string) (*model.Student, bool) {
	for i := range c.Students {
		if c.Students[i].ID == id {
			return &c.Students[i], true
		}
	}
	return nil, false
}

// StudentByRoll looks up a roster entry by its exact roll number.
func (c *Catalog) StudentByRoll(roll string) (*model.Student, bool) {
	for i := range c.Students {
		if c.Students[i].RollNumber == roll {
			return &c.Students[i], true
		}
	}
	return nil, false
}
