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

type CertificatesController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Certificates *services.CertificateService
}

func NewCertificatesController(db *gorm.DB, cfg *config.Config, certs *services.CertificateService) *CertificatesController {
	return &CertificatesController{DB: db, Cfg: cfg, Certificates: certs}
}

// GetMyCertificates lists the student's certificates with course titles.
func (cc *CertificatesController) GetMyCertificates(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var certificates []models.Certificate
	cc.DB.Where("student_id = ?", userID).Order("issued_at desc").Find(&certificates)

	var result []fiber.Map
	for _, cert := range certificates {
		var course models.Course
		cc.DB.First(&course, cert.CourseID)

		result = append(result, fiber.Map{
			"id":             cert.ID,
			"certificate_id": cert.CertificateID,
			"course_id":      cert.CourseID,
			"course_title":   course.Title,
			"issued_at":      cert.IssuedAt,
		})
	}

	return c.JSON(fiber.Map{
		"certificates": result,
	})
}

// GetEligibility godoc
// @Summary Check certificate eligibility
// @Description Reports whether the student currently meets every certificate requirement for the course
// @Tags certificates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/certificate/eligibility [get]
func (cc *CertificatesController) GetEligibility(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	eligible, err := cc.Certificates.Eligible(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not check eligibility")
	}

	return c.JSON(fiber.Map{
		"eligible": eligible,
	})
}

// ClaimCertificate issues the certificate when the student is eligible.
// Claiming an already issued certificate returns the existing one.
func (cc *CertificatesController) ClaimCertificate(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	cert, created, err := cc.Certificates.IssueIfEligible(userID, uint(courseID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return utils.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrNotEligible):
			return utils.Forbidden(c, "Certificate requirements not met")
		default:
			return utils.InternalServerError(c, "Could not issue certificate")
		}
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"certificate_id": cert.CertificateID,
		"course_id":      cert.CourseID,
		"issued_at":      cert.IssuedAt,
	})
}
