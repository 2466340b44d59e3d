package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"enrollhub/internal/model"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	if err := r.db.Create(enrollment).Error; err != nil {
		return fmt.Errorf("create enrollment failed: %w", err)
	}
	return nil
}

// Find returns the enrollment for the (user, course) pair, or nil when the
// user is not enrolled.
func (r *EnrollmentRepository) Find(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query enrollment failed: %w", err)
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.Where("user_id = ?", userID).Preload("Course").Order("id").Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("list enrollments failed: %w", err)
	}
	return enrollments, nil
}
