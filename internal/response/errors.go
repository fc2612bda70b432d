package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrStudentNotFound    ErrCode = "STUDENT_NOT_FOUND"
	ErrUserNotFound       ErrCode = "USER_NOT_FOUND"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrSubjectNotFound      ErrCode = "SUBJECT_NOT_FOUND"
	ErrExamNotAvailable     ErrCode = "EXAM_NOT_AVAILABLE"
	ErrAlreadyAttempted     ErrCode = "ALREADY_ATTEMPTED"
	ErrNoActiveSession      ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionClosed        ErrCode = "SESSION_CLOSED"
	ErrAlreadySubmitted     ErrCode = "ALREADY_SUBMITTED"
	ErrUnknownQuestion      ErrCode = "UNKNOWN_QUESTION"
	ErrInvalidOption        ErrCode = "INVALID_OPTION"
	ErrInvalidQuestionIndex ErrCode = "INVALID_QUESTION_INDEX"
	ErrSubmitFailed         ErrCode = "SUBMIT_FAILED"
	ErrResultNotFound       ErrCode = "RESULT_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrStudentNotFound:
		return "Student not found. Please check your roll number."
	case ErrUserNotFound:
		return "User not found."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrEmailTaken:
		return "An account with this email already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrSubjectNotFound:
		return "Subject not found."
	case ErrExamNotAvailable:
		return "This exam is not available at this time."
	case ErrAlreadyAttempted:
		return "You have already attempted this exam."
	case ErrNoActiveSession:
		return "You do not have an active session for this exam."
	case ErrSessionClosed:
		return "This exam session no longer accepts answers."
	case ErrAlreadySubmitted:
		return "This exam has already been submitted."
	case ErrUnknownQuestion:
		return "The question does not belong to this exam."
	case ErrInvalidOption:
		return "The selected option does not exist."
	case ErrInvalidQuestionIndex:
		return "Question index is out of range."
	case ErrSubmitFailed:
		return "Error submitting exam. Please try again."
	case ErrResultNotFound:
		return "No result found for this exam."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
