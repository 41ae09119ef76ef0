package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"studysync-engine/handlers"
	"studysync-engine/middleware"
	"studysync-engine/models"
	"studysync-engine/services"
	"studysync-engine/utils"
	"studysync-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — state blobs are small JSON documents
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Identity{},
		&models.StoreEntry{},
		&models.LevelUpEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- CONFIGURE Remote Sync + Auth service details ---
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	studyServiceToken := os.Getenv("STUDY_SERVICE_TOKEN")
	if studyServiceToken == "" {
		log.Fatal("STUDY_SERVICE_TOKEN environment variable not set")
	}
	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	// --- END CONFIG ---

	store := services.NewGormStore(db)
	remoteStore := workers.NewRemoteStoreClient(syncServiceURL, studyServiceToken)
	syncCoordinator := workers.NewSyncCoordinator(store, remoteStore)
	store.Watch(syncCoordinator)

	authClient := services.NewAuthServiceClient(authServiceURL, studyServiceToken)
	assistantClient := services.NewAssistantClient(os.Getenv("ASSISTANT_API_URL"), os.Getenv("GEMINI_API_KEY"))

	progressionService := services.NewProgressionService(store, db)
	streakService := services.NewStreakService(store)
	challengeService := services.NewChallengeService(store, progressionService)
	taskService := services.NewTaskService(store, progressionService)
	subjectService := services.NewSubjectService(store)
	notesService := services.NewNotesService(store)
	preferencesService := services.NewPreferencesService(store, progressionService)
	assistantService := services.NewAssistantService(assistantClient, taskService)
	timerService := services.NewTimerService()
	sessionService := services.NewSessionService(db, authClient, streakService, syncCoordinator, timerService)
	exportService := services.NewExportService(store)

	challengeService.StartRolloverScheduler(store)

	// ✅ Setup routes — now with enforced Gateway auth + consistent /s/ prefix
	handlers.SetupSessionRoutes(app, sessionService)
	handlers.SetupProgressionRoutes(app, progressionService, streakService, syncCoordinator, authClient)
	handlers.SetupTaskRoutes(app, taskService)
	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupStudyRoutes(app, subjectService, notesService)
	handlers.SetupSettingsRoutes(app, preferencesService, exportService)
	handlers.SetupAssistantRoutes(app, assistantService)
	handlers.SetupTimerRoutes(app, timerService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Challenge rollover scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	syncCoordinator.Shutdown()
}
