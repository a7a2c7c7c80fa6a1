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

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// GetAvailableCourses lists published courses. Instructors additionally see
// their own unpublished courses.
func (cc *CoursesController) GetAvailableCourses(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	level := c.Query("level")
	search := c.Query("search")

	var user models.User
	cc.DB.First(&user, userID)

	query := cc.DB.Model(&models.Course{})
	if user.Role == models.RoleInstructor {
		query = query.Where("published = ? OR instructor_id = ?", true, userID)
	} else {
		query = query.Where("published = ?", true)
	}

	if level != "" {
		query = query.Where("level = ?", level)
	}
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var courses []models.Course
	query.Find(&courses)

	var result []fiber.Map
	for _, course := range courses {
		var lectureCount int64
		cc.DB.Model(&models.VideoLecture{}).Where("course_id = ?", course.ID).Count(&lectureCount)

		result = append(result, fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"level":       course.Level,
			"price":       course.Price,
			"duration":    course.Duration,
			"published":   course.Published,
			"instructor":  course.InstructorID,
			"lectures":    lectureCount,
		})
	}

	return c.JSON(result)
}

// GetMyCourses lists the courses the student is enrolled in, with
// completion state.
func (cc *CoursesController) GetMyCourses(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var enrollments []models.Enrollment
	cc.DB.Where("student_id = ?", userID).Find(&enrollments)

	var result []fiber.Map
	for _, enrollment := range enrollments {
		var course models.Course
		if err := cc.DB.First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}

		result = append(result, fiber.Map{
			"id":           course.ID,
			"title":        course.Title,
			"level":        course.Level,
			"enrolled_at":  enrollment.EnrolledAt,
			"completed":    enrollment.Completed,
			"completed_at": enrollment.CompletedAt,
		})
	}

	return c.JSON(result)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.Preload("Lectures", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order")
	}).Preload("Assignments").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var lectures []fiber.Map
	for _, lecture := range course.Lectures {
		lectures = append(lectures, fiber.Map{
			"id":          lecture.ID,
			"title":       lecture.Title,
			"description": lecture.Description,
			"video_url":   lecture.VideoURL,
			"duration":    lecture.Duration,
			"order":       lecture.Order,
		})
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"level":       course.Level,
			"price":       course.Price,
			"duration":    course.Duration,
			"published":   course.Published,
			"instructor":  course.InstructorID,
			"lectures":    lectures,
			"assignments": course.Assignments,
		},
	})
}

// Enroll registers the student on the course. Enrolling twice is a no-op
// that reports the existing enrollment.
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	enrollment := models.Enrollment{StudentID: userID, CourseID: course.ID}
	res := cc.DB.Where(models.Enrollment{StudentID: userID, CourseID: course.ID}).
		Attrs(models.Enrollment{EnrolledAt: time.Now()}).
		FirstOrCreate(&enrollment)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not enroll",
		})
	}

	status := "already enrolled"
	if res.RowsAffected > 0 {
		status = "enrolled"
	}
	return c.JSON(fiber.Map{"status": status})
}

func (cc *CoursesController) GetEnrollmentStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var enrollment models.Enrollment
	err = cc.DB.Where("student_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return c.JSON(fiber.Map{"is_enrolled": false})
	}

	return c.JSON(fiber.Map{
		"is_enrolled":  true,
		"completed":    enrollment.Completed,
		"completed_at": enrollment.CompletedAt,
	})
}

// CreateCourse creates a course owned by the requesting instructor.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type CourseInput struct {
		Title       string  `json:"title" validate:"required"`
		Description string  `json:"description"`
		Level       string  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
		Price       float64 `json:"price" validate:"min=0"`
		Duration    int     `json:"duration" validate:"min=0"`
		Published   bool    `json:"published"`
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.Level == "" {
		input.Level = "beginner"
	}

	course := models.Course{
		Title:        input.Title,
		Description:  input.Description,
		InstructorID: userID,
		Level:        input.Level,
		Price:        input.Price,
		Duration:     input.Duration,
		Published:    input.Published,
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

// AddLecture appends a video lecture to one of the instructor's courses.
func (cc *CoursesController) AddLecture(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}
	if course.InstructorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not the course instructor",
		})
	}

	type LectureInput struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		VideoURL    string `json:"video_url"`
		Duration    int    `json:"duration" validate:"min=0"`
		Order       int    `json:"order"`
	}

	var input LectureInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	lecture := models.VideoLecture{
		CourseID:    course.ID,
		Title:       input.Title,
		Description: input.Description,
		VideoURL:    input.VideoURL,
		Duration:    input.Duration,
		Order:       input.Order,
	}

	if err := cc.DB.Create(&lecture).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lecture",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lecture added",
		"lecture": lecture,
	})
}
