package model

// Role distinguishes students from administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Identity is the authenticated principal bound to a login session.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	RollNumber string `json:"roll_number,omitempty"`
	Year       int    `json:"year,omitempty"`
	Department string `json:"department,omitempty"`
}

// IsStudent reports whether the identity may take exams.
func (i *Identity) IsStudent() bool {
	return i != nil && i.Role == RoleStudent
}

// StudentIdentity builds the identity of a roster entry.
func StudentIdentity(s *Student) Identity {
	return Identity{
		ID:         s.ID,
		Name:       s.Name,
		Role:       RoleStudent,
		RollNumber: s.RollNumber,
		Year:       s.Year,
		Department: s.Department,
	}
}

// AdminCredentials is the single static administrator login.
type AdminCredentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"password"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}
