package model

import "time"

// EnrollmentEvent is an audit record written asynchronously by the worker
// that consumes the enrollment event queue.
type EnrollmentEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	Action    string    `gorm:"size:32;not null" json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

const EnrollmentEventActionEnrolled = "enrolled"
