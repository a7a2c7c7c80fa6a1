package services

import (
	"testing"

	"project/backend/models"

	"github.com/stretchr/testify/assert"
)

func gradingFixture(t *testing.T) (*GradingService, *models.User, *models.Exam, uint, uint, uint, uint) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	exam := createExam(t, db, course.ID, 70)
	_, q1Right, q1Wrong := createMultipleChoice(t, db, exam.ID, 10)
	_, q2Right, q2Wrong := createMultipleChoice(t, db, exam.ID, 10)

	gs := NewGradingService(db, NewCertificateService(db), nil)
	return gs, &student, &exam, q1Right, q1Wrong, q2Right, q2Wrong
}

func questionIDForChoice(t *testing.T, gs *GradingService, choiceID uint) uint {
	t.Helper()

	var choice models.Choice
	if err := gs.DB.First(&choice, choiceID).Error; err != nil {
		t.Fatalf("load choice: %v", err)
	}
	return choice.QuestionID
}

func TestSubmitExamAllCorrect(t *testing.T) {
	gs, student, exam, q1Right, _, q2Right, _ := gradingFixture(t)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: questionIDForChoice(t, gs, q1Right), SelectedChoiceID: &q1Right},
		{QuestionID: questionIDForChoice(t, gs, q2Right), SelectedChoiceID: &q2Right},
	})

	assert.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.TotalQuestions)
}

func TestSubmitExamHalfCorrectFails(t *testing.T) {
	gs, student, exam, q1Right, _, _, q2Wrong := gradingFixture(t)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: questionIDForChoice(t, gs, q1Right), SelectedChoiceID: &q1Right},
		{QuestionID: questionIDForChoice(t, gs, q2Wrong), SelectedChoiceID: &q2Wrong},
	})

	assert.NoError(t, err)
	assert.Equal(t, 50.0, result.Score)
	assert.False(t, result.Passed)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
}

func TestSubmitExamMissingChoiceIsIncorrect(t *testing.T) {
	gs, student, exam, q1Right, _, q2Right, _ := gradingFixture(t)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: questionIDForChoice(t, gs, q1Right), SelectedChoiceID: &q1Right},
		{QuestionID: questionIDForChoice(t, gs, q2Right)}, // no choice selected
	})

	assert.NoError(t, err)
	assert.Equal(t, 50.0, result.Score)
}

func TestSubmitExamTrueFalseCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	exam := createExam(t, db, course.ID, 70)
	question := createTrueFalse(t, db, exam.ID, 10, true)

	gs := NewGradingService(db, NewCertificateService(db), nil)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: question.ID, AnswerText: "TRUE"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
}

func TestSubmitExamTrueFalseWrongAnswer(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	exam := createExam(t, db, course.ID, 70)
	question := createTrueFalse(t, db, exam.ID, 10, true)

	gs := NewGradingService(db, NewCertificateService(db), nil)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: question.ID, AnswerText: "false"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitExamShortAnswerNotAutoGraded(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	exam := createExam(t, db, course.ID, 50)
	_, mcRight, _ := createMultipleChoice(t, db, exam.ID, 10)

	short := models.Question{
		ExamID:       exam.ID,
		QuestionText: "Explain interfaces",
		QuestionType: models.ShortAnswer,
		Score:        10,
	}
	assert.NoError(t, db.Create(&short).Error)

	gs := NewGradingService(db, NewCertificateService(db), nil)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: questionIDForChoice(t, gs, mcRight), SelectedChoiceID: &mcRight},
		{QuestionID: short.ID, AnswerText: "they define behavior"},
	})

	assert.NoError(t, err)
	// Short answer counts toward the total but earns nothing automatically.
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.Passed)

	var answer models.Answer
	assert.NoError(t, db.Where("question_id = ?", short.ID).First(&answer).Error)
	assert.Nil(t, answer.IsCorrect)
}

func TestSubmitExamSkipsUnknownQuestions(t *testing.T) {
	gs, student, exam, q1Right, _, _, _ := gradingFixture(t)

	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: questionIDForChoice(t, gs, q1Right), SelectedChoiceID: &q1Right},
		{QuestionID: 99999},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.TotalQuestions)
	// Only the resolvable question contributes to the total.
	assert.Equal(t, 100.0, result.Score)
}

func TestSubmitExamNoAnswersScoresZero(t *testing.T) {
	gs, student, exam, _, _, _, _ := gradingFixture(t)

	result, err := gs.SubmitExam(student.ID, exam.ID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitExamNotFound(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	gs := NewGradingService(db, NewCertificateService(db), nil)

	_, err := gs.SubmitExam(student.ID, 42, nil)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestSubmitExamResubmissionReplaces(t *testing.T) {
	gs, student, exam, q1Right, q1Wrong, q2Right, _ := gradingFixture(t)
	q1 := questionIDForChoice(t, gs, q1Right)
	q2 := questionIDForChoice(t, gs, q2Right)

	first, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: q1, SelectedChoiceID: &q1Wrong},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, first.Score)

	second, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: q1, SelectedChoiceID: &q1Right},
		{QuestionID: q2, SelectedChoiceID: &q2Right},
	})
	assert.NoError(t, err)
	assert.Equal(t, 100.0, second.Score)

	var submissions []models.ExamSubmission
	assert.NoError(t, gs.DB.Where("exam_id = ? AND student_id = ?", exam.ID, student.ID).Find(&submissions).Error)
	assert.Len(t, submissions, 1, "only the current submission survives")

	var answerCount int64
	gs.DB.Model(&models.Answer{}).Where("exam_submission_id = ?", submissions[0].ID).Count(&answerCount)
	assert.Equal(t, int64(2), answerCount)
}

func TestSubmitExamIssuesCertificateWhenEligible(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db, "student")
	course := createCourse(t, db, "Go Basics")
	lectures := createLectures(t, db, course.ID, 2)
	exam := createExam(t, db, course.ID, 70)
	_, right, _ := createMultipleChoice(t, db, exam.ID, 10)

	watchAllLectures(t, db, student.ID, lectures)

	gs := NewGradingService(db, NewCertificateService(db), nil)
	result, err := gs.SubmitExam(student.ID, exam.ID, []AnswerInput{
		{QuestionID: questionIDForChoice(t, gs, right), SelectedChoiceID: &right},
	})

	assert.NoError(t, err)
	assert.True(t, result.Passed)
	assert.True(t, result.CertificateIssued)

	var count int64
	db.Model(&models.Certificate{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
