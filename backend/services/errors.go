package services

import "errors"

// Sentinel errors the controllers translate to HTTP statuses. Reference
// failures inside a submission (dangling question/choice ids) are not
// errors at this level; grading skips those entries and keeps going.
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrLectureNotFound = errors.New("video lecture not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrNotEligible     = errors.New("certificate requirements not met")
)
