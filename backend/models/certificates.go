package models

import (
	"time"

	"gorm.io/gorm"
)

type Certificate struct {
	gorm.Model
	StudentID     uint   `gorm:"uniqueIndex:idx_certificate_student_course"`
	CourseID      uint   `gorm:"uniqueIndex:idx_certificate_student_course"`
	CertificateID string `gorm:"unique;not null"`
	IssuedAt      time.Time
}
