package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestEverySubjectTotalMatchesQuestionMarks(t *testing.T) {
	for _, s := range Default().Subjects {
		sum := 0
		for _, q := range s.Questions {
			sum += q.Marks
		}
		assert.Equal(t, s.TotalMarks, sum, s.ID)
	}
}

func TestLookups(t *testing.T) {
	c := Default()

	s, ok := c.Subject("c-prog-1")
	require.True(t, ok)
	assert.Equal(t, "C Programming", s.Name)
	assert.Len(t, s.Questions, 10)

	_, ok = c.Subject("nope")
	assert.False(t, ok)

	year1 := c.SubjectsForYear(1)
	require.Len(t, year1, 2)
	assert.Equal(t, "c-prog-1", year1[0].ID)
	assert.Equal(t, "math-1", year1[1].ID)

	sc, ok := c.ScheduleFor("os-3")
	require.True(t, ok)
	assert.Equal(t, "14:00", sc.StartTime)

	st, ok := c.StudentByRoll("CSE2020001")
	require.True(t, ok)
	assert.Equal(t, "Jane Smith", st.Name)

	_, ok = c.StudentByRoll("cse2020001")
	assert.False(t, ok, "roll numbers match exactly")

	st, ok = c.StudentByID("4")
	require.True(t, ok)
	assert.Equal(t, 4, st.Year)
}

func TestValidateReportsBrokenInvariants(t *testing.T) {
	c := &Catalog{
		Subjects: []model.Subject{{
			ID: "s1", Name: "Broken", Year: 1, DurationMinutes: 30, TotalMarks: 10,
			Questions: []model.Question{
				{ID: "q1", Options: []string{"a", "b"}, CorrectAnswer: 2, Marks: 5},
				{ID: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Marks: 2},
			},
		}},
		Schedules: []model.Schedule{
			{ID: "sc1", SubjectID: "missing", Date: "2025-09-01", StartTime: "09:00", EndTime: "10:00"},
			{ID: "sc2", SubjectID: "s1", Date: "01/09/2025", StartTime: "09:00", EndTime: "10:00"},
		},
		Students: []model.Student{
			{ID: "1", RollNumber: "R1"},
			{ID: "2", RollNumber: "R1"},
		},
	}

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "total marks 10 but questions sum to 7")
	assert.Contains(t, msg, "duplicate question q1")
	assert.Contains(t, msg, "correct answer 2 outside 2 options")
	assert.Contains(t, msg, "unknown subject missing")
	assert.Contains(t, msg, "schedule sc2")
	assert.Contains(t, msg, "duplicate roll number R1")
	assert.Contains(t, msg, "admin credentials")
}

func TestLoadYAML(t *testing.T) {
	doc := `
subjects:
  - id: go-1
    name: Go Basics
    year: 1
    duration_minutes: 15
    total_marks: 3
    questions:
      - id: g1
        question: Which keyword starts a goroutine?
        options: [go, async, spawn]
        correct_answer: 0
        marks: 3
schedules:
  - id: sc-go
    subject_id: go-1
    date: "2025-10-01"
    start_time: "08:00"
    end_time: "08:30"
    is_active: true
students:
  - id: s1
    roll_number: GO001
    name: Gopher
    year: 1
    department: CSE
admin:
  username: root
  password: secret
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	s, ok := c.Subject("go-1")
	require.True(t, ok)
	assert.Equal(t, []string{"go", "async", "spawn"}, s.Questions[0].Options)
	assert.True(t, c.Schedules[0].IsActive)
	assert.Equal(t, "secret", c.Admin.Password)
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subjects: []\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "admin credentials")
}
