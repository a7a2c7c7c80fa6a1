package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title        string `gorm:"not null"`
	Description  string
	InstructorID uint   `gorm:"index;not null"`
	Level        string `gorm:"default:beginner"` // beginner, intermediate, advanced
	Price        float64
	Duration     int // hours
	Published    bool
	Lectures     []VideoLecture
	Assignments  []Assignment
	Exams        []Exam
}

type VideoLecture struct {
	gorm.Model
	CourseID    uint `gorm:"index;not null"`
	Title       string
	Description string
	VideoURL    string
	Duration    int // seconds
	Order       int `gorm:"column:sequence_order"`
}

type Enrollment struct {
	gorm.Model
	StudentID   uint `gorm:"uniqueIndex:idx_enrollment_student_course"`
	CourseID    uint `gorm:"uniqueIndex:idx_enrollment_student_course"`
	EnrolledAt  time.Time
	Completed   bool
	CompletedAt *time.Time
}

// StudentProgress rows are created lazily on the first progress update for
// a (student, lecture) pair.
type StudentProgress struct {
	gorm.Model
	StudentID      uint `gorm:"uniqueIndex:idx_progress_student_lecture"`
	VideoLectureID uint `gorm:"uniqueIndex:idx_progress_student_lecture"`
	Watched        bool
	Progress       float64 // percentage watched, 0-100
	LastWatched    time.Time
}

type Assignment struct {
	gorm.Model
	CourseID    uint `gorm:"index;not null"`
	Title       string
	Description string
	DueDate     *time.Time
	MaxScore    int `gorm:"default:100"`
}

const (
	SubmissionSubmitted   = "submitted"
	SubmissionUnderReview = "under_review"
	SubmissionApproved    = "approved"
	SubmissionRejected    = "rejected"
)

type AssignmentSubmission struct {
	gorm.Model
	AssignmentID   uint `gorm:"uniqueIndex:idx_submission_assignment_student"`
	StudentID      uint `gorm:"uniqueIndex:idx_submission_assignment_student"`
	SubmissionText string
	SubmittedAt    time.Time
	Status         string `gorm:"default:submitted"` // submitted, under_review, approved, rejected
	Score          *int
	Feedback       string
	ReviewedByID   *uint
	ReviewedAt     *time.Time
}
