package controllers

import (
	"errors"
	"strconv"
	"time"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssignmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAssignmentsController(db *gorm.DB, cfg *config.Config) *AssignmentsController {
	return &AssignmentsController{DB: db, Cfg: cfg}
}

// CreateAssignment adds an assignment to one of the instructor's courses.
func (ac *AssignmentsController) CreateAssignment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}
	if course.InstructorID != userID {
		return utils.Forbidden(c, "Not the course instructor")
	}

	type AssignmentInput struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		MaxScore    int    `json:"max_score" validate:"min=0"`
	}

	var input AssignmentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.MaxScore == 0 {
		input.MaxScore = 100
	}

	assignment := models.Assignment{
		CourseID:    course.ID,
		Title:       input.Title,
		Description: input.Description,
		MaxScore:    input.MaxScore,
	}

	if err := ac.DB.Create(&assignment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create assignment")
	}

	return c.JSON(fiber.Map{
		"message":    "Assignment created",
		"assignment": assignment,
	})
}

func (ac *AssignmentsController) GetCourseAssignments(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var assignments []models.Assignment
	ac.DB.Where("course_id = ?", courseID).Find(&assignments)

	return c.JSON(fiber.Map{
		"assignments": assignments,
	})
}

// SubmitAssignment creates or replaces the student's submission. A
// resubmission resets the review state back to submitted.
func (ac *AssignmentsController) SubmitAssignment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	assignmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	var assignment models.Assignment
	if err := ac.DB.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Assignment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	type SubmissionInput struct {
		SubmissionText string `json:"submission_text" validate:"required"`
	}

	var input SubmissionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var submission models.AssignmentSubmission
	err = ac.DB.Where(models.AssignmentSubmission{
		AssignmentID: assignment.ID,
		StudentID:    userID,
	}).FirstOrCreate(&submission).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not create submission")
	}

	submission.SubmissionText = input.SubmissionText
	submission.SubmittedAt = time.Now()
	submission.Status = models.SubmissionSubmitted
	submission.Score = nil
	submission.Feedback = ""
	submission.ReviewedByID = nil
	submission.ReviewedAt = nil

	if err := ac.DB.Save(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not save submission")
	}

	return utils.Created(c, submission)
}

// GetSubmissions lists submissions the requester may see: students get
// their own, instructors get submissions for their courses.
func (ac *AssignmentsController) GetSubmissions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var submissions []models.AssignmentSubmission
	query := ac.DB.Model(&models.AssignmentSubmission{})
	switch user.Role {
	case models.RoleInstructor:
		query = query.
			Joins("JOIN assignments ON assignments.id = assignment_submissions.assignment_id").
			Joins("JOIN courses ON courses.id = assignments.course_id").
			Where("courses.instructor_id = ?", userID)
	case models.RoleAdmin:
		// admins see everything
	default:
		query = query.Where("student_id = ?", userID)
	}
	query.Find(&submissions)

	return c.JSON(fiber.Map{
		"submissions": submissions,
	})
}

// ReviewSubmission lets the course instructor set the review verdict with
// reviewer attribution. The certificate issuer reads the resulting status.
func (ac *AssignmentsController) ReviewSubmission(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	var submission models.AssignmentSubmission
	if err := ac.DB.First(&submission, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Submission not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// Only the owning course's instructor (or an admin) may review.
	var assignment models.Assignment
	if err := ac.DB.First(&assignment, submission.AssignmentID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	var course models.Course
	if err := ac.DB.First(&course, assignment.CourseID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	var reviewer models.User
	if err := ac.DB.First(&reviewer, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if course.InstructorID != userID && reviewer.Role != models.RoleAdmin {
		return utils.Forbidden(c, "Not the course instructor")
	}

	type ReviewInput struct {
		Status   string `json:"status" validate:"required,oneof=under_review approved rejected"`
		Score    *int   `json:"score" validate:"omitempty,min=0"`
		Feedback string `json:"feedback"`
	}

	var input ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	now := time.Now()
	submission.Status = input.Status
	submission.Score = input.Score
	submission.Feedback = input.Feedback
	submission.ReviewedByID = &userID
	submission.ReviewedAt = &now

	if err := ac.DB.Save(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not save review")
	}

	return c.JSON(fiber.Map{
		"status":     "submission reviewed",
		"submission": submission,
	})
}
