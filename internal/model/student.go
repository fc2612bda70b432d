package model

// Student is a roster entry. RollNumber is unique and doubles as the login credential.
type Student struct {
	ID         string `json:"id" yaml:"id"`
	RollNumber string `json:"roll_number" yaml:"roll_number"`
	Name       string `json:"name" yaml:"name"`
	Year       int    `json:"year" yaml:"year"`
	Department string `json:"department" yaml:"department"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	RollNumber string `json:"roll_number" binding:"required,min=3,max=32"`
}
