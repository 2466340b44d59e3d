package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enrollhub/internal/app"
	"enrollhub/internal/transport/http/flash"
	"enrollhub/internal/transport/http/middleware"
)

type EnrollmentHandler struct {
	enrollmentService *app.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService *app.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

func (h *EnrollmentHandler) Courses(c *gin.Context) {
	courses, err := h.enrollmentService.ListCourses()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load courses")
		return
	}
	c.HTML(http.StatusOK, "courses.html", gin.H{
		"Flash":   flash.Take(c),
		"Courses": courses,
	})
}

// Enroll records the enrollment and always lands on the enrollments list. An
// unknown course id is a malformed request and gets a plain 404 rather than a
// flash message.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	courseID, err := strconv.ParseUint(c.Param("courseID"), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	result, err := h.enrollmentService.Enroll(c.Request.Context(), userID, uint(courseID))
	if err != nil {
		if errors.Is(err, app.ErrCourseNotFound) {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.String(http.StatusInternalServerError, "failed to enroll")
		return
	}

	if result.AlreadyEnrolled {
		flash.Set(c, flash.LevelInfo, "You are already enrolled in this course.")
	} else {
		flash.Set(c, flash.LevelSuccess, fmt.Sprintf("You have successfully enrolled in %s.", result.Course.Name))
	}
	c.Redirect(http.StatusSeeOther, "/my_enrollments")
}

func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	enrollments, err := h.enrollmentService.ListEnrollments(userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load enrollments")
		return
	}
	c.HTML(http.StatusOK, "enrollments.html", gin.H{
		"Flash":       flash.Take(c),
		"Enrollments": enrollments,
	})
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok
}
