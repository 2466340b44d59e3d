package http

import (
	"github.com/gin-gonic/gin"

	appsvc "enrollhub/internal/app"
	"enrollhub/internal/bootstrap"
	"enrollhub/internal/repository"
	"enrollhub/internal/transport/http/handler"
	"enrollhub/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.LoadHTMLGlob(app.Config.App.TemplatesGlob)

	userRepo := repository.NewUserRepository(app.MySQL)
	courseRepo := repository.NewCourseRepository(app.MySQL)
	enrollmentRepo := repository.NewEnrollmentRepository(app.MySQL)
	authService := appsvc.NewAuthService(userRepo)
	enrollmentService := appsvc.NewEnrollmentService(courseRepo, enrollmentRepo, app.Publisher)

	authHandler := handler.NewAuthHandler(authService, app.Sessions, app.Config.Session)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/", authHandler.Index)
	router.GET("/register", authHandler.RegisterForm)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.LoginForm)
	router.POST("/login", authHandler.Login)
	router.GET("/healthz", healthHandler.Check)

	authed := router.Group("/", middleware.RequireSession(app.Config.Session, app.Sessions))
	authed.GET("/home", authHandler.Home)
	authed.GET("/courses", enrollmentHandler.Courses)
	authed.GET("/enroll/:courseID", enrollmentHandler.Enroll)
	authed.GET("/my_enrollments", enrollmentHandler.MyEnrollments)
	authed.GET("/logout", authHandler.Logout)

	return router
}
