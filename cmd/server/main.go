package main

import (
	"database/sql"

	"github.com/davidar27/tesorosindia_backend/internal/application"
	"github.com/davidar27/tesorosindia_backend/internal/config"
	"github.com/davidar27/tesorosindia_backend/internal/email"
	"github.com/davidar27/tesorosindia_backend/internal/ia"
	"github.com/davidar27/tesorosindia_backend/internal/infrastructure/repository"
	handlers "github.com/davidar27/tesorosindia_backend/internal/interfaces/http"
	services "github.com/davidar27/tesorosindia_backend/internal/service"
	"github.com/davidar27/tesorosindia_backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

func main() {
	config.InitLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDBConnString())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Error pinging database: %v", err)
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Usuario-Id,X-Usuario-Rol",
		AllowCredentials: true,
		ExposeHeaders:    "Content-Length,Content-Disposition",
		MaxAge:           86400,
	}))

	// Sesiones
	sessionStore, err := session.New(session.Config{
		Driver:    cfg.SessionDriver,
		RedisAddr: cfg.RedisAddr,
		RedisPass: cfg.RedisPassword,
		RedisDB:   cfg.RedisDB,
		TTL:       cfg.SessionTTL,
	})
	if err != nil {
		log.Fatalf("Error initializing session store: %v", err)
	}
	defer sessionStore.Close()

	// Catálogo
	catalogRepo := repository.NewCatalogRepository(db)
	catalogCache := application.NewCatalogCache(cfg.CatalogCacheTTL)
	catalogProvider := application.NewMenuCatalogProvider(catalogRepo, catalogCache)

	// Chat libre
	iaClient := ia.NewClient(cfg.IABaseURL)
	conversationRepo := repository.NewConversationRepository(db)
	rateLimiter := application.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	chatService := application.NewChatService(
		iaClient,
		application.NewIntentDetector(),
		application.NewResponseParser(),
		catalogProvider,
		conversationRepo,
		rateLimiter,
	)

	// Email Client
	var emailClient *email.Client
	if cfg.SMTPHost != "" {
		emailClient, err = email.NewClient(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.SMTPFromName,
			cfg.SMTPFromEmail,
		)
		if err != nil {
			log.Printf("Warning: Email client initialization failed: %v", err)
			emailClient = nil // Continuar sin email
		}
	}

	// S3 para archivado de reportes
	var reportStorage *services.ReportStorage
	if cfg.S3BucketName != "" {
		reportStorage, err = services.NewReportStorage(cfg.AWSRegion)
		if err != nil {
			log.Printf("Warning: Report storage initialization failed: %v", err)
			reportStorage = nil
		}
	}

	asistenteHandler := handlers.NewAsistenteHandler(
		chatService,
		catalogProvider,
		sessionStore,
		iaClient,
		conversationRepo,
		reportStorage,
		emailClient,
	)

	api := app.Group("/api")

	// Rutas del asistente
	asistente := api.Group("/asistente")
	asistente.Post("/chat", asistenteHandler.Chat)
	asistente.Post("/accion", asistenteHandler.Dispatch)
	asistente.Get("/estado/:sessionId", asistenteHandler.GetState)
	asistente.Post("/guiado/mostrar", asistenteHandler.ShowGuided)
	asistente.Post("/guiado/ocultar", asistenteHandler.HideGuided)
	asistente.Get("/menu", asistenteHandler.GetMainMenu)
	asistente.Get("/menu/categorias", asistenteHandler.GetCategoryMenu)
	asistente.Get("/conversation/:id", asistenteHandler.GetConversation)
	asistente.Get("/client/:clienteId/conversations", asistenteHandler.GetClientConversations)
	asistente.Get("/reporte/descargar", asistenteHandler.DownloadReport)

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
