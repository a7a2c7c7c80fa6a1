package services

import (
	"errors"
	"time"

	"project/backend/models"

	"gorm.io/gorm"
)

type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

// RecordProgress upserts the student's watch state for one lecture and
// re-runs the course completion check. Watched is monotonic: once a
// lecture is watched this operation never resets it. Calling it again with
// the same arguments is a no-op beyond refreshing LastWatched.
func (ps *ProgressService) RecordProgress(studentID, lectureID uint, progress float64, watched bool) (*models.StudentProgress, error) {
	if progress < 0 || progress > 100 {
		return nil, ErrInvalidProgress
	}

	var record models.StudentProgress

	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		var lecture models.VideoLecture
		if err := tx.First(&lecture, lectureID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLectureNotFound
			}
			return err
		}

		err := tx.Where(models.StudentProgress{
			StudentID:      studentID,
			VideoLectureID: lectureID,
		}).FirstOrCreate(&record).Error
		if err != nil {
			return err
		}

		record.Progress = progress
		if watched {
			record.Watched = true
		}
		record.LastWatched = time.Now()
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		return ps.checkCourseCompletion(tx, studentID, lecture.CourseID)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// checkCourseCompletion flips the enrollment to completed on the first
// update where every lecture of the course has been watched. Re-running it
// for an already completed enrollment changes nothing, and an enrollment is
// never demoted back to incomplete.
func (ps *ProgressService) checkCourseCompletion(tx *gorm.DB, studentID, courseID uint) error {
	var totalLectures int64
	if err := tx.Model(&models.VideoLecture{}).Where("course_id = ?", courseID).Count(&totalLectures).Error; err != nil {
		return err
	}

	var watched int64
	err := tx.Model(&models.StudentProgress{}).
		Joins("JOIN video_lectures ON video_lectures.id = student_progresses.video_lecture_id").
		Where("student_progresses.student_id = ? AND video_lectures.course_id = ? AND student_progresses.watched = ?",
			studentID, courseID, true).
		Count(&watched).Error
	if err != nil {
		return err
	}

	if totalLectures == 0 || watched < totalLectures {
		return nil
	}

	var enrollment models.Enrollment
	err = tx.Where(models.Enrollment{StudentID: studentID, CourseID: courseID}).
		Attrs(models.Enrollment{EnrolledAt: time.Now()}).
		FirstOrCreate(&enrollment).Error
	if err != nil {
		return err
	}

	if !enrollment.Completed {
		now := time.Now()
		enrollment.Completed = true
		enrollment.CompletedAt = &now
		return tx.Save(&enrollment).Error
	}
	return nil
}
