package model

import "errors"

// ErrAlreadyAttempted is returned when a student already has an attempt for a subject.
var ErrAlreadyAttempted = errors.New("subject already attempted")
