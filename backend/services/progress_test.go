package services

import (
	"testing"
	"time"

	"project/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestRecordProgressCreatesLazily(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	lectures := createLectures(t, db, course.ID, 1)

	var before int64
	db.Model(&models.StudentProgress{}).Count(&before)
	assert.Equal(t, int64(0), before)

	ps := NewProgressService(db)
	record, err := ps.RecordProgress(student.ID, lectures[0].ID, 40, false)

	assert.NoError(t, err)
	assert.Equal(t, 40.0, record.Progress)
	assert.False(t, record.Watched)

	var after int64
	db.Model(&models.StudentProgress{}).Count(&after)
	assert.Equal(t, int64(1), after)
}

func TestRecordProgressWatchedIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	lectures := createLectures(t, db, course.ID, 1)

	ps := NewProgressService(db)
	_, err := ps.RecordProgress(student.ID, lectures[0].ID, 100, true)
	assert.NoError(t, err)

	// A later update with watched=false must not reset the flag.
	record, err := ps.RecordProgress(student.ID, lectures[0].ID, 10, false)
	assert.NoError(t, err)
	assert.True(t, record.Watched)
	assert.Equal(t, 10.0, record.Progress)
}

func TestRecordProgressRejectsOutOfRange(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	lectures := createLectures(t, db, course.ID, 1)

	ps := NewProgressService(db)

	_, err := ps.RecordProgress(student.ID, lectures[0].ID, 150, false)
	assert.ErrorIs(t, err, ErrInvalidProgress)

	_, err = ps.RecordProgress(student.ID, lectures[0].ID, -1, false)
	assert.ErrorIs(t, err, ErrInvalidProgress)
}

func TestRecordProgressUnknownLecture(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")

	ps := NewProgressService(db)
	_, err := ps.RecordProgress(student.ID, 12345, 50, false)
	assert.ErrorIs(t, err, ErrLectureNotFound)
}

func TestCompletionFlipsOnLastLecture(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	lectures := createLectures(t, db, course.ID, 3)

	ps := NewProgressService(db)

	for _, lecture := range lectures[:2] {
		_, err := ps.RecordProgress(student.ID, lecture.ID, 100, true)
		assert.NoError(t, err)
	}

	var enrollment models.Enrollment
	err := db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error
	if err == nil {
		assert.False(t, enrollment.Completed, "two of three lectures is not completion")
	}

	_, err = ps.RecordProgress(student.ID, lectures[2].ID, 100, true)
	assert.NoError(t, err)

	assert.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.True(t, enrollment.Completed)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestCompletionIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	lectures := createLectures(t, db, course.ID, 1)

	ps := NewProgressService(db)
	_, err := ps.RecordProgress(student.ID, lectures[0].ID, 100, true)
	assert.NoError(t, err)

	var first models.Enrollment
	assert.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&first).Error)
	assert.True(t, first.Completed)
	completedAt := *first.CompletedAt

	time.Sleep(10 * time.Millisecond)

	// Re-recording identical progress must not move the completion stamp.
	_, err = ps.RecordProgress(student.ID, lectures[0].ID, 100, true)
	assert.NoError(t, err)

	var second models.Enrollment
	assert.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&second).Error)
	assert.True(t, second.Completed)
	assert.Equal(t, completedAt.Unix(), second.CompletedAt.Unix())

	var progressRows int64
	db.Model(&models.StudentProgress{}).Where("student_id = ?", student.ID).Count(&progressRows)
	assert.Equal(t, int64(1), progressRows)
}

func TestZeroLectureCourseNeverCompletes(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Empty Course")
	other := createCourse(t, db, "Other Course")
	lectures := createLectures(t, db, other.ID, 1)

	ps := NewProgressService(db)
	_, err := ps.RecordProgress(student.ID, lectures[0].ID, 100, true)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
