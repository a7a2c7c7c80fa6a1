package controllers

import (
	"errors"

	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Progress: progress}
}

// UpdateProgress godoc
// @Summary Record video watch progress
// @Description Upserts the student's progress for a lecture and re-checks course completion
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/update [post]
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type ProgressInput struct {
		VideoLectureID uint    `json:"video_lecture" validate:"required"`
		Progress       float64 `json:"progress" validate:"min=0,max=100"`
		Watched        bool    `json:"watched"`
	}

	var input ProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	record, err := pc.Progress.RecordProgress(userID, input.VideoLectureID, input.Progress, input.Watched)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLectureNotFound):
			return utils.NotFound(c, "Video lecture not found")
		case errors.Is(err, services.ErrInvalidProgress):
			return utils.ValidationError(c, map[string]string{"progress": "must be between 0 and 100"})
		default:
			return utils.InternalServerError(c, "Could not update progress")
		}
	}

	return c.JSON(fiber.Map{
		"status":        "progress updated",
		"video_lecture": record.VideoLectureID,
		"progress":      record.Progress,
		"watched":       record.Watched,
	})
}

// GetProgress returns the student's own progress rows.
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var records []models.StudentProgress
	pc.DB.Where("student_id = ?", userID).Find(&records)

	return c.JSON(fiber.Map{
		"progress": records,
	})
}

// GetProgressOverview summarizes watch state per enrolled course.
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var enrollments []models.Enrollment
	pc.DB.Where("student_id = ?", userID).Find(&enrollments)

	var overview []fiber.Map
	for _, enrollment := range enrollments {
		var totalLectures int64
		pc.DB.Model(&models.VideoLecture{}).
			Where("course_id = ?", enrollment.CourseID).Count(&totalLectures)

		var watched int64
		pc.DB.Model(&models.StudentProgress{}).
			Joins("JOIN video_lectures ON video_lectures.id = student_progresses.video_lecture_id").
			Where("student_progresses.student_id = ? AND video_lectures.course_id = ? AND student_progresses.watched = ?",
				userID, enrollment.CourseID, true).
			Count(&watched)

		overview = append(overview, fiber.Map{
			"course_id":      enrollment.CourseID,
			"total_lectures": totalLectures,
			"watched":        watched,
			"completed":      enrollment.Completed,
			"completed_at":   enrollment.CompletedAt,
		})
	}

	return c.JSON(fiber.Map{
		"overview": overview,
	})
}
