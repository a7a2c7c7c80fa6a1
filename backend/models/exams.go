package models

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	gorm.Model
	CourseID     uint `gorm:"index;not null"`
	Title        string
	Description  string
	Duration     int `gorm:"default:60"` // minutes
	PassingScore int `gorm:"default:70"` // percentage
	IsActive     bool
	Questions    []Question
}

// QuestionType is the closed set of gradeable question kinds. Grading
// switches on it exhaustively; anything else is a data error.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

type Question struct {
	gorm.Model
	ExamID       uint `gorm:"index;not null"`
	QuestionText string
	QuestionType QuestionType `gorm:"default:multiple_choice"`
	Score        int          `gorm:"default:10"`
	Order        int          `gorm:"column:sequence_order"`
	Choices      []Choice
}

type Choice struct {
	gorm.Model
	QuestionID uint `gorm:"index;not null"`
	ChoiceText string
	IsCorrect  bool
}

// ExamSubmission is the single current submission per (exam, student).
// Resubmitting replaces the row and its answers wholesale.
type ExamSubmission struct {
	gorm.Model
	ExamID      uint `gorm:"uniqueIndex:idx_submission_exam_student"`
	StudentID   uint `gorm:"uniqueIndex:idx_submission_exam_student"`
	StartedAt   time.Time
	SubmittedAt *time.Time
	Score       float64
	Passed      bool
	Answers     []Answer `gorm:"foreignKey:ExamSubmissionID"`
}

type Answer struct {
	gorm.Model
	ExamSubmissionID uint `gorm:"index;not null"`
	QuestionID       uint
	SelectedChoiceID *uint
	AnswerText       string
	// IsCorrect is nil for answers that are not auto-graded (short answer).
	IsCorrect *bool
}
