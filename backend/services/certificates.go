package services

import (
	"errors"
	"time"

	"project/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateService struct {
	DB *gorm.DB
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{DB: db}
}

// Eligible reports whether the student currently satisfies every
// certificate requirement for the course: an approved submission for the
// course's assignment (when one exists), every lecture watched, and at
// least one passed exam submission. It has no side effects.
func (cs *CertificateService) Eligible(studentID, courseID uint) (bool, error) {
	return cs.eligible(cs.DB, studentID, courseID)
}

func (cs *CertificateService) eligible(tx *gorm.DB, studentID, courseID uint) (bool, error) {
	var course models.Course
	if err := tx.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCourseNotFound
		}
		return false, err
	}

	// Only the course's first assignment gates issuance. Courses with
	// several assignments are not fully checked; known narrowing.
	var assignment models.Assignment
	err := tx.Where("course_id = ?", courseID).Order("id").First(&assignment).Error
	if err == nil {
		var approved int64
		err = tx.Model(&models.AssignmentSubmission{}).
			Where("assignment_id = ? AND student_id = ? AND status = ?",
				assignment.ID, studentID, models.SubmissionApproved).
			Count(&approved).Error
		if err != nil {
			return false, err
		}
		if approved == 0 {
			return false, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var totalLectures int64
	if err := tx.Model(&models.VideoLecture{}).Where("course_id = ?", courseID).Count(&totalLectures).Error; err != nil {
		return false, err
	}

	var watched int64
	err = tx.Model(&models.StudentProgress{}).
		Joins("JOIN video_lectures ON video_lectures.id = student_progresses.video_lecture_id").
		Where("student_progresses.student_id = ? AND video_lectures.course_id = ? AND student_progresses.watched = ?",
			studentID, courseID, true).
		Count(&watched).Error
	if err != nil {
		return false, err
	}

	// A course without lectures is never certifiable.
	if totalLectures == 0 || watched < totalLectures {
		return false, nil
	}

	var passed int64
	err = tx.Model(&models.ExamSubmission{}).
		Joins("JOIN exams ON exams.id = exam_submissions.exam_id").
		Where("exam_submissions.student_id = ? AND exams.course_id = ? AND exam_submissions.passed = ?",
			studentID, courseID, true).
		Count(&passed).Error
	if err != nil {
		return false, err
	}

	return passed > 0, nil
}

// IssueIfEligible creates the certificate exactly once for an eligible
// (student, course) pair and returns it. The second return value reports
// whether this call created it. Ineligible students get ErrNotEligible and
// no side effect. Existing certificates are never revoked or overwritten.
func (cs *CertificateService) IssueIfEligible(studentID, courseID uint) (*models.Certificate, bool, error) {
	var cert *models.Certificate
	var created bool

	err := cs.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		cert, created, err = cs.issueIfEligible(tx, studentID, courseID)
		if err != nil {
			return err
		}
		if cert == nil {
			return ErrNotEligible
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return cert, created, nil
}

// issueIfEligible is the transactional core shared with the grading
// service. A nil certificate with a nil error means not eligible. The
// unique (student, course) index is the concurrency guard: FirstOrCreate
// either finds the existing row or inserts exactly one.
func (cs *CertificateService) issueIfEligible(tx *gorm.DB, studentID, courseID uint) (*models.Certificate, bool, error) {
	ok, err := cs.eligible(tx, studentID, courseID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	cert := models.Certificate{StudentID: studentID, CourseID: courseID}
	res := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Attrs(models.Certificate{
			CertificateID: uuid.NewString(),
			IssuedAt:      time.Now(),
		}).
		FirstOrCreate(&cert)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return &cert, res.RowsAffected > 0, nil
}
