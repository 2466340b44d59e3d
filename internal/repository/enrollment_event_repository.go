package repository

import (
	"fmt"

	"gorm.io/gorm"

	"enrollhub/internal/model"
)

type EnrollmentEventRepository struct {
	db *gorm.DB
}

func NewEnrollmentEventRepository(db *gorm.DB) *EnrollmentEventRepository {
	return &EnrollmentEventRepository{db: db}
}

func (r *EnrollmentEventRepository) Create(event *model.EnrollmentEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create enrollment event failed: %w", err)
	}
	return nil
}

func (r *EnrollmentEventRepository) ListByUser(userID uint) ([]model.EnrollmentEvent, error) {
	var events []model.EnrollmentEvent
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list enrollment events failed: %w", err)
	}
	return events, nil
}
