package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ehdrbdndns/Hagah-Backend/internal/api"
	"github.com/ehdrbdndns/Hagah-Backend/internal/events"
	"github.com/ehdrbdndns/Hagah-Backend/internal/identity"
	"github.com/ehdrbdndns/Hagah-Backend/internal/jwt"
	"github.com/ehdrbdndns/Hagah-Backend/internal/repository"
	"github.com/ehdrbdndns/Hagah-Backend/internal/service"
	"github.com/ehdrbdndns/Hagah-Backend/internal/tracing"
	_ "github.com/ehdrbdndns/Hagah-Backend/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("hagah-backend")

	shutdownTracer, err := tracing.InitTracerProvider("hagah-backend")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	db := connectDB()
	defer db.Close()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	eventPublisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	resolvers := identity.NewRegistry(
		identity.NewKakaoResolver(os.Getenv("KAKAO_USERINFO_URL")),
		identity.NewAppleResolver(nil),
		identity.NewGuestResolver(),
	)

	userRepo := repository.NewPostgresUserRepository(db)
	issuer := jwt.NewIssuer(jwtSecret)

	authService := service.NewAuthService(resolvers, userRepo, issuer, eventPublisher)

	authHandler := api.NewAuthHandler(authService)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "hagah-backend"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Post("/login", authHandler.Login)

	userRoutes := v1.Group("/users")
	userRoutes.Use(api.AuthMiddleware(issuer))
	userRoutes.Get("/me", authHandler.GetUserProfile)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Listening hagah-backend on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func connectDB() *sqlx.DB {
	db, err := sqlx.Connect("pgx", databaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func databaseURL() string {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

func handleMigrations() {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", databaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
