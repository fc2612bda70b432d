package model

// Question is a single multiple-choice question. Immutable once seeded.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correct_answer" yaml:"correct_answer"`
	Marks         int      `json:"marks" yaml:"marks"`
}

// QuestionForStudent is a question without the correct answer, sent to students.
type QuestionForStudent struct {
	ID      string   `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Marks   int      `json:"marks"`
}

// ForStudent strips the answer key.
func (q Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{ID: q.ID, Text: q.Text, Options: q.Options, Marks: q.Marks}
}
