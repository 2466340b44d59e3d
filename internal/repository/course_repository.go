package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"enrollhub/internal/model"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) List() ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.Order("id").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list courses failed: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) GetByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query course by id failed: %w", err)
	}
	return &course, nil
}

func (r *CourseRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count courses failed: %w", err)
	}
	return count, nil
}

func (r *CourseRepository) CreateBatch(courses []model.Course) error {
	if err := r.db.Create(&courses).Error; err != nil {
		return fmt.Errorf("create courses failed: %w", err)
	}
	return nil
}
