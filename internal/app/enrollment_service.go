package app

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"enrollhub/internal/model"
	"enrollhub/internal/repository"
)

var ErrCourseNotFound = errors.New("course not found")

// EventPublisher pushes enrollment audit events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event model.EnrollmentEvent) error
}

type EnrollmentService struct {
	courseRepo     *repository.CourseRepository
	enrollmentRepo *repository.EnrollmentRepository
	publisher      EventPublisher
}

// EnrollResult reports the outcome of an enrollment attempt. AlreadyEnrolled
// is informational, not an error: the user stays enrolled exactly once.
type EnrollResult struct {
	Course          *model.Course
	AlreadyEnrolled bool
}

func NewEnrollmentService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	publisher EventPublisher,
) *EnrollmentService {
	return &EnrollmentService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		publisher:      publisher,
	}
}

func (s *EnrollmentService) ListCourses() ([]model.Course, error) {
	return s.courseRepo.List()
}

// Enroll records the (user, course) pair at most once. A missing course is a
// hard failure; an existing enrollment is a no-op. The composite unique index
// turns a lost check-then-insert race into the AlreadyEnrolled outcome too.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*EnrollResult, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	existing, err := s.enrollmentRepo.Find(userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &EnrollResult{Course: course, AlreadyEnrolled: true}, nil
	}

	enrollment := &model.Enrollment{
		UserID:   userID,
		CourseID: courseID,
	}
	if err := s.enrollmentRepo.Create(enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &EnrollResult{Course: course, AlreadyEnrolled: true}, nil
		}
		return nil, err
	}

	s.publishEnrolled(ctx, userID, courseID)
	return &EnrollResult{Course: course}, nil
}

func (s *EnrollmentService) ListEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(userID)
}

// publishEnrolled is best-effort: the audit trail must never block or roll
// back an enrollment, so broker failures are only logged.
func (s *EnrollmentService) publishEnrolled(ctx context.Context, userID, courseID uint) {
	if s.publisher == nil {
		return
	}
	event := model.EnrollmentEvent{
		UserID:   userID,
		CourseID: courseID,
		Action:   model.EnrollmentEventActionEnrolled,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish enrollment event failed: %v", err)
	}
}
