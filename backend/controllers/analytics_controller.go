package controllers

import (
	"strconv"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg}
}

// GetCourseAnalytics returns enrollment and completion aggregates for one
// course, computed from live rows.
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var enrolled int64
	ac.DB.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled)

	var completed int64
	ac.DB.Model(&models.Enrollment{}).
		Where("course_id = ? AND completed = ?", courseID, true).Count(&completed)

	var certificates int64
	ac.DB.Model(&models.Certificate{}).Where("course_id = ?", courseID).Count(&certificates)

	completionRate := 0.0
	if enrolled > 0 {
		completionRate = float64(completed) / float64(enrolled) * 100
	}

	// Per-exam score aggregates
	var exams []models.Exam
	ac.DB.Where("course_id = ?", courseID).Find(&exams)

	var examStats []fiber.Map
	for _, exam := range exams {
		var submissions int64
		ac.DB.Model(&models.ExamSubmission{}).Where("exam_id = ?", exam.ID).Count(&submissions)

		var passed int64
		ac.DB.Model(&models.ExamSubmission{}).
			Where("exam_id = ? AND passed = ?", exam.ID, true).Count(&passed)

		var avgScore float64
		ac.DB.Model(&models.ExamSubmission{}).
			Where("exam_id = ?", exam.ID).
			Select("COALESCE(AVG(score), 0)").Scan(&avgScore)

		examStats = append(examStats, fiber.Map{
			"exam_id":       exam.ID,
			"title":         exam.Title,
			"submissions":   submissions,
			"passed":        passed,
			"average_score": avgScore,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course_id":       course.ID,
		"title":           course.Title,
		"enrolled":        enrolled,
		"completed":       completed,
		"completion_rate": completionRate,
		"certificates":    certificates,
		"exams":           examStats,
	})
}
