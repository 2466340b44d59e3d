package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"enrollhub/internal/bootstrap"
	"enrollhub/internal/config"
	"enrollhub/internal/model"
	"enrollhub/internal/repository"
	"enrollhub/internal/session"
)

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]session.Data
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]session.Data)}
}

func (s *memSessionStore) Create(_ context.Context, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.sessions[id] = session.Data{UserID: userID, LastLogin: time.Now()}
	return id, nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (*session.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func writeTestTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"login.html":       `login{{if .Flash}} flash={{.Flash.Text}}{{end}}{{if .Error}} error={{.Error}}{{end}}`,
		"register.html":    `register{{if .Flash}} flash={{.Flash.Text}}{{end}}{{if .Error}} error={{.Error}}{{end}}`,
		"home.html":        `home last_login={{.LastLogin}}`,
		"courses.html":     `courses{{range .Courses}} [{{.Name}}]{{end}}`,
		"enrollments.html": `enrollments{{range .Enrollments}} [{{.Course.Name}}]{{end}}`,
	}
	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write template %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "*.html")
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&model.User{}, &model.Course{}, &model.Enrollment{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := bootstrap.SeedCourses(repository.NewCourseRepository(db)); err != nil {
		t.Fatalf("seed courses: %v", err)
	}

	cfg := &config.Config{
		App: config.AppConfig{
			Name:          "enrollhub",
			Env:           "test",
			GinMode:       gin.TestMode,
			TemplatesGlob: writeTestTemplates(t),
		},
		Session: config.SessionConfig{
			CookieSecret: "test-secret",
			TTLMinute:    60,
			CookieName:   "enrollhub_session",
		},
	}

	app := &bootstrap.App{
		Config:    cfg,
		MySQL:     db,
		Sessions:  newMemSessionStore(),
		StartedAt: time.Now(),
	}
	return NewRouter(app), db
}

func do(router *gin.Engine, method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "enrollhub_session" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func register(t *testing.T, router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return do(router, http.MethodPost, "/register", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
}

func login(t *testing.T, router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return do(router, http.MethodPost, "/login", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
}

func TestRootRedirectsToLogin(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(router, http.MethodGet, "/", nil, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestProtectedRoutesRedirectWithoutSession(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/home", "/courses", "/enroll/1", "/my_enrollments", "/logout"} {
		rr := do(router, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %d %q", path, rr.Code, rr.Header().Get("Location"))
		}
	}
}

func TestTamperedSessionCookieRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(router, http.MethodGet, "/home", nil, []*http.Cookie{
		{Name: "enrollhub_session", Value: "forged-token"},
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestRegisterLoginDuplicateFlow(t *testing.T) {
	router, db := newTestRouter(t)

	rr := register(t, router, "alice@example.com", "pw1234")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("register: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = login(t, router, "alice@example.com", "pw1234")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/home" {
		t.Fatalf("login: got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	cookie := sessionCookie(t, rr)

	rr = do(router, http.MethodGet, "/home", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "last_login=") {
		t.Fatalf("home: got %d %q", rr.Code, rr.Body.String())
	}

	// Duplicate registration adds no row and lands on login.
	rr = register(t, router, "alice@example.com", "pw1234")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("duplicate register: got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestLoginUnknownUserRedirectsToRegister(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := login(t, router, "nobody@example.com", "pw1234")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/register" {
		t.Fatalf("expected redirect to /register, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLoginWrongPasswordStaysOnLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router, "alice@example.com", "pw1234")

	rr := login(t, router, "alice@example.com", "wrongpw")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Invalid email or password.") {
		t.Fatalf("expected login page with error, got %d %q", rr.Code, rr.Body.String())
	}
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "enrollhub_session" {
			t.Fatalf("session cookie set on failed login")
		}
	}
}

func TestEnrollFlow(t *testing.T) {
	router, db := newTestRouter(t)
	register(t, router, "alice@example.com", "pw1234")
	cookie := sessionCookie(t, login(t, router, "alice@example.com", "pw1234"))

	rr := do(router, http.MethodGet, "/courses", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "[Python Basics]") {
		t.Fatalf("courses: got %d %q", rr.Code, rr.Body.String())
	}

	rr = do(router, http.MethodGet, "/enroll/1", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/my_enrollments" {
		t.Fatalf("enroll: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	// Enrolling again keeps exactly one row.
	rr = do(router, http.MethodGet, "/enroll/1", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/my_enrollments" {
		t.Fatalf("re-enroll: got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	var count int64
	if err := db.Model(&model.Enrollment{}).Count(&count).Error; err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 enrollment, got %d", count)
	}

	rr = do(router, http.MethodGet, "/my_enrollments", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "[Python Basics]") {
		t.Fatalf("my_enrollments: got %d %q", rr.Code, rr.Body.String())
	}
}

func TestEnrollUnknownCourseIs404(t *testing.T) {
	router, db := newTestRouter(t)
	register(t, router, "alice@example.com", "pw1234")
	cookie := sessionCookie(t, login(t, router, "alice@example.com", "pw1234"))

	for _, path := range []string{"/enroll/999", "/enroll/abc"} {
		rr := do(router, http.MethodGet, path, nil, []*http.Cookie{cookie})
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rr.Code)
		}
	}

	var count int64
	if err := db.Model(&model.Enrollment{}).Count(&count).Error; err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no enrollments, got %d", count)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router, "alice@example.com", "pw1234")
	cookie := sessionCookie(t, login(t, router, "alice@example.com", "pw1234"))

	rr := do(router, http.MethodGet, "/logout", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("logout: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	// The old cookie no longer opens protected pages.
	rr = do(router, http.MethodGet, "/home", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("home after logout: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	// Logging out twice is not an error.
	rr = do(router, http.MethodGet, "/logout", nil, []*http.Cookie{cookie})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("second logout: got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestFlashShownOnce(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := register(t, router, "alice@example.com", "pw1234")
	flashCookies := rr.Result().Cookies()

	rr = do(router, http.MethodGet, "/login", nil, flashCookies)
	if !strings.Contains(rr.Body.String(), "Registration successful! Please login.") {
		t.Fatalf("expected flash on login page, got %q", rr.Body.String())
	}

	// The render cleared the cookie, so a bare request shows no flash.
	rr = do(router, http.MethodGet, "/login", nil, nil)
	if strings.Contains(rr.Body.String(), "Registration successful") {
		t.Fatalf("flash rendered twice: %q", rr.Body.String())
	}
}
