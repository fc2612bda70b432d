// Package grading scores an answer map against a subject's answer key.
package grading

import (
	"math"

	"github.com/stemsi/exstem-online/internal/model"
)

// PassPercentage is the lowest passing percentage.
const PassPercentage = 60

// QuestionResult is the outcome of one question. Selected is nil when the
// question was left unanswered.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Selected      *int   `json:"selected"`
	CorrectAnswer int    `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Marks         int    `json:"marks"`
}

// Result is the graded outcome of an answer map.
type Result struct {
	Score       int              `json:"score"`
	TotalMarks  int              `json:"total_marks"`
	Answered    int              `json:"answered"`
	Correct     int              `json:"correct"`
	PerQuestion []QuestionResult `json:"per_question"`
}

// Grade scores answers against subject. A question is correct when its
// answer equals the correct option; unanswered questions score nothing.
// Answers for IDs not in the subject are ignored.
func Grade(subject *model.Subject, answers map[string]int) Result {
	res := Result{
		TotalMarks:  subject.TotalMarks,
		PerQuestion: make([]QuestionResult, 0, len(subject.Questions)),
	}

	for _, q := range subject.Questions {
		qr := QuestionResult{QuestionID: q.ID, CorrectAnswer: q.CorrectAnswer, Marks: q.Marks}
		if selected, ok := answers[q.ID]; ok {
			qr.Selected = &selected
			qr.Correct = selected == q.CorrectAnswer
			res.Answered++
		}
		if qr.Correct {
			res.Score += q.Marks
			res.Correct++
		}
		res.PerQuestion = append(res.PerQuestion, qr)
	}

	return res
}

// Percentage returns score/total as a whole percentage, rounded half up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Letter maps a percentage onto the grade bands.
func Letter(pct int) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B+"
	case pct >= 60:
		return "B"
	case pct >= 50:
		return "C"
	default:
		return "F"
	}
}

// Passed reports whether pct reaches PassPercentage.
func Passed(pct int) bool {
	return pct >= PassPercentage
}
