package controllers

import (
	"errors"
	"strconv"

	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ExamsController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Grading *services.GradingService
}

func NewExamsController(db *gorm.DB, cfg *config.Config, grading *services.GradingService) *ExamsController {
	return &ExamsController{DB: db, Cfg: cfg, Grading: grading}
}

// GetCourseExams lists the active exams of a course. Inactive exams stay
// out of the listing but keep their historical submissions.
func (ec *ExamsController) GetCourseExams(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var exams []models.Exam
	ec.DB.Where("course_id = ? AND is_active = ?", courseID, true).Find(&exams)

	var result []fiber.Map
	for _, exam := range exams {
		var questionCount int64
		ec.DB.Model(&models.Question{}).Where("exam_id = ?", exam.ID).Count(&questionCount)

		result = append(result, fiber.Map{
			"id":            exam.ID,
			"title":         exam.Title,
			"description":   exam.Description,
			"duration":      exam.Duration,
			"passing_score": exam.PassingScore,
			"questions":     questionCount,
		})
	}

	return c.JSON(result)
}

// GetExamDetails returns the exam with its ordered questions and choices.
// Correctness flags are only included for the course instructor.
func (ec *ExamsController) GetExamDetails(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	examID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid exam ID",
		})
	}

	var exam models.Exam
	err = ec.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order")
	}).Preload("Questions.Choices").First(&exam, examID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Exam not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var course models.Course
	ec.DB.First(&course, exam.CourseID)
	isInstructor := course.InstructorID == userID

	var questions []fiber.Map
	for _, q := range exam.Questions {
		var choices []fiber.Map
		for _, choice := range q.Choices {
			entry := fiber.Map{
				"id":   choice.ID,
				"text": choice.ChoiceText,
			}
			if isInstructor {
				entry["is_correct"] = choice.IsCorrect
			}
			choices = append(choices, entry)
		}

		questions = append(questions, fiber.Map{
			"id":      q.ID,
			"text":    q.QuestionText,
			"type":    q.QuestionType,
			"score":   q.Score,
			"order":   q.Order,
			"choices": choices,
		})
	}

	return c.JSON(fiber.Map{
		"exam": fiber.Map{
			"id":            exam.ID,
			"course_id":     exam.CourseID,
			"title":         exam.Title,
			"description":   exam.Description,
			"duration":      exam.Duration,
			"passing_score": exam.PassingScore,
			"is_active":     exam.IsActive,
			"questions":     questions,
		},
	})
}

// SubmitExam godoc
// @Summary Submit exam answers
// @Description Grades the submission and reports score, verdict, and whether a certificate was issued
// @Tags exams
// @Accept json
// @Produce json
// @Success 200 {object} services.ExamResult
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /exams/{id}/submit [post]
func (ec *ExamsController) SubmitExam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	examID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid exam ID",
		})
	}

	type SubmitInput struct {
		Answers []services.AnswerInput `json:"answers"`
	}

	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	result, err := ec.Grading.SubmitExam(userID, uint(examID), input.Answers)
	if err != nil {
		if errors.Is(err, services.ErrExamNotFound) {
			return utils.NotFound(c, "Exam not found")
		}
		return utils.InternalServerError(c, "Could not grade submission")
	}

	return c.JSON(result)
}

// GetExamResult returns the student's current submission for the exam.
func (ec *ExamsController) GetExamResult(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	examID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid exam ID",
		})
	}

	var submission models.ExamSubmission
	err = ec.DB.Preload("Answers").
		Where("exam_id = ? AND student_id = ?", examID, userID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No submission for this exam",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"score":        submission.Score,
		"passed":       submission.Passed,
		"submitted_at": submission.SubmittedAt,
		"answers":      submission.Answers,
	})
}

// CreateExam adds an exam to one of the instructor's courses.
func (ec *ExamsController) CreateExam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := ec.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}
	if course.InstructorID != userID {
		return utils.Forbidden(c, "Not the course instructor")
	}

	type ExamInput struct {
		Title        string `json:"title" validate:"required"`
		Description  string `json:"description"`
		Duration     int    `json:"duration" validate:"min=0"`
		PassingScore int    `json:"passing_score" validate:"min=0,max=100"`
		IsActive     bool   `json:"is_active"`
	}

	var input ExamInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.Duration == 0 {
		input.Duration = 60
	}
	if input.PassingScore == 0 {
		input.PassingScore = 70
	}

	exam := models.Exam{
		CourseID:     course.ID,
		Title:        input.Title,
		Description:  input.Description,
		Duration:     input.Duration,
		PassingScore: input.PassingScore,
		IsActive:     input.IsActive,
	}

	if err := ec.DB.Create(&exam).Error; err != nil {
		return utils.InternalServerError(c, "Could not create exam")
	}

	return c.JSON(fiber.Map{
		"message": "Exam created",
		"exam":    exam,
	})
}

// AddQuestion adds a question with its choices to an exam.
func (ec *ExamsController) AddQuestion(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	examID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid exam ID",
		})
	}

	var exam models.Exam
	if err := ec.DB.First(&exam, examID).Error; err != nil {
		return utils.NotFound(c, "Exam not found")
	}

	var course models.Course
	if err := ec.DB.First(&course, exam.CourseID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.InstructorID != userID {
		return utils.Forbidden(c, "Not the course instructor")
	}

	type ChoiceInput struct {
		Text      string `json:"text" validate:"required"`
		IsCorrect bool   `json:"is_correct"`
	}
	type QuestionInput struct {
		Text    string        `json:"text" validate:"required"`
		Type    string        `json:"type" validate:"required,oneof=multiple_choice true_false short_answer"`
		Score   int           `json:"score" validate:"min=0"`
		Order   int           `json:"order"`
		Choices []ChoiceInput `json:"choices" validate:"dive"`
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.Score == 0 {
		input.Score = 10
	}

	question := models.Question{
		ExamID:       exam.ID,
		QuestionText: input.Text,
		QuestionType: models.QuestionType(input.Type),
		Score:        input.Score,
		Order:        input.Order,
	}
	for _, choice := range input.Choices {
		question.Choices = append(question.Choices, models.Choice{
			ChoiceText: choice.Text,
			IsCorrect:  choice.IsCorrect,
		})
	}

	if err := ec.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return c.JSON(fiber.Map{
		"message":  "Question added",
		"question": question,
	})
}
