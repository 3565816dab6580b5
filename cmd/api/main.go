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
	"github.com/rs/zerolog"

	"github.com/talenttune/talenttune-api/internal/config"
	"github.com/talenttune/talenttune-api/internal/database"
	"github.com/talenttune/talenttune-api/internal/handler"
	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
	"github.com/talenttune/talenttune-api/internal/router"
	"github.com/talenttune/talenttune-api/internal/service"
	"github.com/talenttune/talenttune-api/internal/token"
	cloud "github.com/talenttune/talenttune-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.AssessmentEvaluator{},
		&models.AssessmentParticipant{},
		&models.Room{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := token.NewService(cfg.JWTSecret, cfg.SessionTTL)

	userRepo := repository.NewUserRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	roomRepo := repository.NewRoomRepository(db)

	authService := service.NewAuthService(userRepo, validate, logger)
	userService := service.NewUserService(userRepo, validate, cfg.BcryptCost, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, userRepo, validate, logger)
	scheduleService := service.NewScheduleService(assessmentRepo, uploader, validate, logger)
	roomService := service.NewRoomService(roomRepo, assessmentRepo, redisClient, cfg.RoomTimeLimit, cfg.RoomSessionTTL, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := service.NewSeedService(userRepo, roomRepo, cfg.BcryptCost, logger).Bootstrap(seedCtx); err != nil {
		log.Fatalf("failed to seed baseline data: %v", err)
	}
	cancelSeed()

	session := middleware.SessionConfig{
		Tokens:     tokens,
		CookieName: cfg.SessionCookieName,
		Secure:     cfg.IsProduction(),
	}

	authHandler := handler.NewAuthHandler(authService, tokens, cfg.SessionCookieName, cfg.SessionTTL, cfg.IsProduction(), logger)
	userHandler := handler.NewUserHandler(userService, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, logger)
	roomHandler := handler.NewRoomHandler(roomService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:  &logger,
		Session: session,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		AssessmentHandler: assessmentHandler,
		ScheduleHandler:   scheduleHandler,
		RoomHandler:       roomHandler,
		Session:           session,
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
