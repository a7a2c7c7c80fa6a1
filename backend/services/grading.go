package services

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"project/backend/models"

	"gorm.io/gorm"
)

type GradingService struct {
	DB           *gorm.DB
	Certificates *CertificateService
	Logger       *log.Logger
}

func NewGradingService(db *gorm.DB, certs *CertificateService, logger *log.Logger) *GradingService {
	return &GradingService{DB: db, Certificates: certs, Logger: logger}
}

// AnswerInput is one submitted answer. SelectedChoiceID applies to
// multiple choice, AnswerText to true/false and short answer.
type AnswerInput struct {
	QuestionID       uint   `json:"question_id"`
	SelectedChoiceID *uint  `json:"selected_choice_id"`
	AnswerText       string `json:"answer_text"`
}

type ExamResult struct {
	Score             float64 `json:"score"`
	Passed            bool    `json:"passed"`
	TotalQuestions    int     `json:"total_questions"`
	CertificateIssued bool    `json:"certificate_issued"`
}

// SubmitExam grades a submission against the exam's answer key and persists
// it with its per-question answers. A prior submission for the same
// (exam, student) pair is replaced wholesale, answers included, inside the
// same transaction. On a passing score the certificate check runs before
// the transaction commits.
func (gs *GradingService) SubmitExam(studentID, examID uint, answers []AnswerInput) (*ExamResult, error) {
	var result *ExamResult

	err := gs.DB.Transaction(func(tx *gorm.DB) error {
		var exam models.Exam
		if err := tx.First(&exam, examID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExamNotFound
			}
			return err
		}

		// Replace any previous submission so at most one current
		// submission exists per (exam, student).
		var prior models.ExamSubmission
		err := tx.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&prior).Error
		if err == nil {
			if err := tx.Unscoped().Where("exam_submission_id = ?", prior.ID).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Delete(&prior).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		submission := models.ExamSubmission{
			ExamID:      examID,
			StudentID:   studentID,
			StartedAt:   now,
			SubmittedAt: &now,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}

		totalScore := 0
		earnedScore := 0
		processed := 0

		for _, input := range answers {
			var question models.Question
			if err := tx.First(&question, input.QuestionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Dangling reference: drop this entry, keep grading.
					gs.logf("skipping answer for unknown question %d on exam %d", input.QuestionID, examID)
					continue
				}
				return err
			}

			totalScore += question.Score
			verdict := gs.gradeAnswer(tx, &question, input)
			if verdict.correct != nil && *verdict.correct {
				earnedScore += question.Score
			}

			answer := models.Answer{
				ExamSubmissionID: submission.ID,
				QuestionID:       question.ID,
				SelectedChoiceID: verdict.choiceID,
				AnswerText:       input.AnswerText,
				IsCorrect:        verdict.correct,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
			processed++
		}

		submission.Score = 0
		if totalScore > 0 {
			submission.Score = float64(earnedScore) / float64(totalScore) * 100
		}
		submission.Passed = submission.Score >= float64(exam.PassingScore)
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		issued := false
		if submission.Passed {
			_, created, err := gs.Certificates.issueIfEligible(tx, studentID, exam.CourseID)
			if err != nil {
				return err
			}
			issued = created
		}

		result = &ExamResult{
			Score:             submission.Score,
			Passed:            submission.Passed,
			TotalQuestions:    processed,
			CertificateIssued: issued,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type gradeVerdict struct {
	// correct is nil when the question is not auto-graded.
	correct  *bool
	choiceID *uint
}

func (gs *GradingService) gradeAnswer(tx *gorm.DB, question *models.Question, input AnswerInput) gradeVerdict {
	switch question.QuestionType {
	case models.MultipleChoice:
		return gs.gradeMultipleChoice(tx, question, input)
	case models.TrueFalse:
		return gs.gradeTrueFalse(tx, question, input)
	case models.ShortAnswer:
		// Left for manual review: no verdict, no points.
		return gradeVerdict{}
	default:
		gs.logf("question %d has unknown type %q, treating as ungraded", question.ID, question.QuestionType)
		return gradeVerdict{}
	}
}

func (gs *GradingService) gradeMultipleChoice(tx *gorm.DB, question *models.Question, input AnswerInput) gradeVerdict {
	incorrect := false
	if input.SelectedChoiceID == nil {
		return gradeVerdict{correct: &incorrect}
	}

	var choice models.Choice
	err := tx.Where("id = ? AND question_id = ?", *input.SelectedChoiceID, question.ID).First(&choice).Error
	if err != nil {
		// Dangling or foreign choice counts as a wrong answer.
		gs.logf("choice %d not found for question %d", *input.SelectedChoiceID, question.ID)
		return gradeVerdict{correct: &incorrect}
	}

	return gradeVerdict{correct: &choice.IsCorrect, choiceID: &choice.ID}
}

// gradeTrueFalse matches the submitted text against the stringified
// is_correct flag of the question's first stored choice. The first Choice
// row is the answer key for true/false questions.
func (gs *GradingService) gradeTrueFalse(tx *gorm.DB, question *models.Question, input AnswerInput) gradeVerdict {
	incorrect := false

	var choice models.Choice
	err := tx.Where("question_id = ?", question.ID).Order("id").First(&choice).Error
	if err != nil {
		gs.logf("true/false question %d has no choices", question.ID)
		return gradeVerdict{correct: &incorrect}
	}

	correct := strings.EqualFold(strings.TrimSpace(input.AnswerText), strconv.FormatBool(choice.IsCorrect))
	return gradeVerdict{correct: &correct}
}

func (gs *GradingService) logf(format string, args ...interface{}) {
	if gs.Logger != nil {
		gs.Logger.Printf(format, args...)
	}
}
