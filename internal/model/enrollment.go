package model

import "time"

// Enrollment links a user to a course. The composite unique index backs the
// one-enrollment-per-user-per-course rule so concurrent requests cannot both
// insert after passing the existence check.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"course_id"`
	Course    Course    `gorm:"foreignKey:CourseID" json:"course"`
	CreatedAt time.Time `json:"created_at"`
}
