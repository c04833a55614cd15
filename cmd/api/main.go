package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gradient-edu/gradient-api/internal/config"
	"github.com/gradient-edu/gradient-api/internal/database"
	"github.com/gradient-edu/gradient-api/internal/handler"
	"github.com/gradient-edu/gradient-api/internal/middleware"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/observability"
	"github.com/gradient-edu/gradient-api/internal/repository"
	"github.com/gradient-edu/gradient-api/internal/router"
	"github.com/gradient-edu/gradient-api/internal/service"
	"github.com/gradient-edu/gradient-api/internal/storage"
	"github.com/gradient-edu/gradient-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.Feedback{},
		&models.FeedbackDetail{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, dashboard caching disabled")
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, logger)
	if err != nil {
		log.Fatalf("failed to initialise file storage: %v", err)
	}

	var grader ai.Grader
	var assistant ai.Assistant
	if cfg.OpenAIAPIKey != "" {
		openAIGrader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.GradingModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create grading oracle: %v", err)
		}
		grader = openAIGrader

		openAIAssistant, err := ai.NewOpenAIAssistant(cfg.OpenAIAPIKey, cfg.ChatModel, logger)
		if err != nil {
			log.Fatalf("failed to create chat assistant: %v", err)
		}
		assistant = openAIAssistant
	} else {
		logger.Warn().Msg("openai not configured, grading and chat disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	gradingService := service.NewGradingService(submissionRepo, files, grader, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	var dispatcher service.GradingDispatcher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Close()

		natsDispatcher := service.NewNATSDispatcher(conn, "", gradingService, logger)
		if err := natsDispatcher.Start(workerCtx); err != nil {
			log.Fatalf("failed to start grading worker: %v", err)
		}
		dispatcher = natsDispatcher
	} else {
		channelDispatcher := service.NewChannelDispatcher(cfg.GradingQueueSize, gradingService, logger)
		channelDispatcher.Start(workerCtx)
		dispatcher = channelDispatcher
	}

	authService := service.NewAuthService(userRepo, validate, service.TokenIssuerConfig{
		Secret:        cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, logger)
	userService := service.NewUserService(userRepo, courseRepo, enrollmentRepo, validate, cfg.StudentCourseCap, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, enrollmentRepo, files, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, enrollmentRepo, files, dispatcher, validate, logger)
	searchService := service.NewSearchService(searchRepo, validate, logger)
	chatService := service.NewChatService(assistant, validate, logger)
	dashboardService := service.NewDashboardService(submissionRepo, assignmentRepo, enrollmentRepo, redisClient, cfg.DashboardCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app)
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:     handler.NewHealthHandler(cfg.AppName),
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		SearchHandler:     handler.NewSearchHandler(searchService, logger),
		ChatHandler:       handler.NewChatHandler(chatService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
