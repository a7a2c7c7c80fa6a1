package routes

import (
	"log"

	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Services
	certService := services.NewCertificateService(db)
	gradingService := services.NewGradingService(db, certService, logger)
	progressService := services.NewProgressService(db)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	instructorOnly := middleware.RequireRole(db, models.RoleInstructor, models.RoleAdmin)

	// User routes
	usersController := controllers.NewUsersController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, usersController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, usersController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, progressService)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Get("/", progressController.GetProgress)
	progress.Get("/overview", progressController.GetProgressOverview)
	progress.Post("/update", progressController.UpdateProgress)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	examsController := controllers.NewExamsController(db, cfg, gradingService)
	assignmentsController := controllers.NewAssignmentsController(db, cfg)
	certificatesController := controllers.NewCertificatesController(db, cfg, certService)
	analyticsController := controllers.NewAnalyticsController(db, cfg)

	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetAvailableCourses)
	courses.Get("/my", coursesController.GetMyCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Post("/:id/enroll", coursesController.Enroll)
	courses.Get("/:id/enrollment", coursesController.GetEnrollmentStatus)
	courses.Get("/:id/assignments", assignmentsController.GetCourseAssignments)
	courses.Get("/:id/exams", examsController.GetCourseExams)
	courses.Get("/:id/certificate/eligibility", certificatesController.GetEligibility)
	courses.Post("/:id/certificate/claim", certificatesController.ClaimCertificate)
	courses.Post("/", instructorOnly, coursesController.CreateCourse)
	courses.Post("/:id/lectures", instructorOnly, coursesController.AddLecture)
	courses.Post("/:id/exams", instructorOnly, examsController.CreateExam)
	courses.Post("/:id/assignments", instructorOnly, assignmentsController.CreateAssignment)
	courses.Get("/:id/analytics", instructorOnly, analyticsController.GetCourseAnalytics)

	// Assignment submissions
	assignments := app.Group("/api/assignments", authMiddleware)
	assignments.Post("/:id/submissions", assignmentsController.SubmitAssignment)
	assignments.Get("/submissions", assignmentsController.GetSubmissions)
	assignments.Post("/submissions/:id/review", instructorOnly, assignmentsController.ReviewSubmission)

	// Exams routes
	exams := app.Group("/api/exams", authMiddleware)
	exams.Get("/:id", examsController.GetExamDetails)
	exams.Post("/:id/submit", examsController.SubmitExam)
	exams.Get("/:id/result", examsController.GetExamResult)
	exams.Post("/:id/questions", instructorOnly, examsController.AddQuestion)

	// Certificates
	app.Get("/api/certificates", authMiddleware, certificatesController.GetMyCertificates)
}
