package model

// SelectAnswerRequest records the chosen option for a question.
type SelectAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
	Option     *int   `json:"option" binding:"required,min=0"`
}

// NavigateRequest moves the question cursor, either to Index or by Step (-1 or 1).
type NavigateRequest struct {
	Index *int `json:"index" binding:"required_without=Step"`
	Step  int  `json:"step" binding:"omitempty,oneof=-1 1"`
}
