package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"xnrt-rewards-system/handlers"
	"xnrt-rewards-system/middleware"
	"xnrt-rewards-system/models"
	"xnrt-rewards-system/services"
	"xnrt-rewards-system/utils"
	"xnrt-rewards-system/workers"

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

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-Username, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
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
		&models.User{},
		&models.Balance{},
		&models.Referral{},
		&models.CommissionLog{},
		&models.Task{},
		&models.UserTask{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.MiningSession{},
		&models.Stake{},
		&models.Transaction{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	referralService := services.NewReferralService(db)
	progressService := services.NewProgressService(db)
	miningService := services.NewMiningService(db)
	stakingService := services.NewStakingService(db)
	transactionService := services.NewTransactionService(db)
	catalogService := services.NewCatalogService(db)
	statementService := services.NewStatementService(db)

	if err := catalogService.SeedContent(); err != nil {
		log.Fatal("failed to seed catalog:", err)
	}

	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("REWARDS_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("REWARDS_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewAccountSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", serviceToken)
	syncWorker.Start(ctx)

	depositWorker := workers.NewDepositCreditWorker(db)
	go depositWorker.Start(ctx)

	services.StartSchedulers(stakingService, statementService)

	handlers.SetupUserRoutes(app, userService, ledgerService, referralService)
	handlers.SetupEarnRoutes(app, progressService, miningService, stakingService)
	handlers.SetupWalletRoutes(app, transactionService, catalogService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Account Sync Worker running")
	log.Println("✅ Deposit Credit Worker running (every 10s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
