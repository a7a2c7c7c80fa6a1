package services

import (
	"testing"

	"project/backend/models"
	"project/backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := utils.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func createStudent(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleStudent,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return user
}

func createCourse(t *testing.T, db *gorm.DB, title string) models.Course {
	t.Helper()

	instructor := models.User{
		Username:     title + "-instructor",
		Email:        title + "-instructor@example.com",
		PasswordHash: "x",
		Role:         models.RoleInstructor,
	}
	if err := db.Create(&instructor).Error; err != nil {
		t.Fatalf("create instructor: %v", err)
	}

	course := models.Course{
		Title:        title,
		InstructorID: instructor.ID,
		Published:    true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func createLectures(t *testing.T, db *gorm.DB, courseID uint, n int) []models.VideoLecture {
	t.Helper()

	lectures := make([]models.VideoLecture, n)
	for i := 0; i < n; i++ {
		lectures[i] = models.VideoLecture{
			CourseID: courseID,
			Title:    "Lecture",
			Order:    i + 1,
			Duration: 600,
		}
		if err := db.Create(&lectures[i]).Error; err != nil {
			t.Fatalf("create lecture: %v", err)
		}
	}
	return lectures
}

func createExam(t *testing.T, db *gorm.DB, courseID uint, passingScore int) models.Exam {
	t.Helper()

	exam := models.Exam{
		CourseID:     courseID,
		Title:        "Final Exam",
		PassingScore: passingScore,
		IsActive:     true,
	}
	if err := db.Create(&exam).Error; err != nil {
		t.Fatalf("create exam: %v", err)
	}
	return exam
}

// createMultipleChoice adds a question worth `score` points with one
// correct and one incorrect choice, returning the question and both
// choice ids (correct first).
func createMultipleChoice(t *testing.T, db *gorm.DB, examID uint, score int) (models.Question, uint, uint) {
	t.Helper()

	question := models.Question{
		ExamID:       examID,
		QuestionText: "Pick the right one",
		QuestionType: models.MultipleChoice,
		Score:        score,
		Choices: []models.Choice{
			{ChoiceText: "right", IsCorrect: true},
			{ChoiceText: "wrong", IsCorrect: false},
		},
	}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return question, question.Choices[0].ID, question.Choices[1].ID
}

func createTrueFalse(t *testing.T, db *gorm.DB, examID uint, score int, answer bool) models.Question {
	t.Helper()

	question := models.Question{
		ExamID:       examID,
		QuestionText: "True or false",
		QuestionType: models.TrueFalse,
		Score:        score,
		Choices: []models.Choice{
			{ChoiceText: "True", IsCorrect: answer},
		},
	}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return question
}

func watchAllLectures(t *testing.T, db *gorm.DB, studentID uint, lectures []models.VideoLecture) {
	t.Helper()

	ps := NewProgressService(db)
	for _, lecture := range lectures {
		if _, err := ps.RecordProgress(studentID, lecture.ID, 100, true); err != nil {
			t.Fatalf("record progress: %v", err)
		}
	}
}
