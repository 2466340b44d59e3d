package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "enrollhub/internal/app"
	"enrollhub/internal/config"
	"enrollhub/internal/model"
	mysqlClient "enrollhub/internal/platform/mysql"
	rabbitmqClient "enrollhub/internal/platform/rabbitmq"
	redisClient "enrollhub/internal/platform/redis"
	"enrollhub/internal/repository"
	"enrollhub/internal/session"
	"enrollhub/internal/worker"
)

// App is the explicit application context handed to the router: every shared
// resource lives here, nothing is ambient.
type App struct {
	Config      *config.Config
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Sessions    session.Store
	Publisher   appsvc.EventPublisher
	AuditWorker *worker.EnrollmentAuditWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.EnrollmentEvent{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	if err := SeedCourses(repository.NewCourseRepository(mysqlDB)); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	eventRepo := repository.NewEnrollmentEventRepository(mysqlDB)
	auditWorker := worker.NewEnrollmentAuditWorker(mqConn, eventRepo, cfg.RabbitMQ.EnrollmentEventQueue)
	if err := auditWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start enrollment audit worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		Sessions:    session.NewRedisStore(redisCli, time.Duration(cfg.Session.TTLMinute)*time.Minute),
		Publisher:   rabbitmqClient.NewEnrollmentEventPublisher(mqConn, cfg.RabbitMQ.EnrollmentEventQueue),
		AuditWorker: auditWorker,
		StartedAt:   time.Now(),
	}, nil
}

// SeedCourses inserts the sample catalog the first time the app starts. A
// non-empty courses table means seeding already happened and nothing is
// written.
func SeedCourses(courseRepo *repository.CourseRepository) error {
	count, err := courseRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sample := []model.Course{
		{Name: "Python Basics", Description: "Learn Python programming from scratch."},
		{Name: "Flask Web Development", Description: "Build web apps using Flask."},
		{Name: "Data Science", Description: "Introduction to Data Science concepts."},
	}
	return courseRepo.CreateBatch(sample)
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
