package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/relaychat/relaychat-backend/internal/cache"
	"github.com/relaychat/relaychat-backend/internal/handlers"
	"github.com/relaychat/relaychat-backend/internal/handlers/ws"
	"github.com/relaychat/relaychat-backend/internal/middleware"
	"github.com/relaychat/relaychat-backend/internal/repository"
	"github.com/relaychat/relaychat-backend/internal/service"
	"github.com/relaychat/relaychat-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		AppName: "RelayChat Backend",
		// Inline base64 attachments inflate the body by about a third.
		BodyLimit: 24 * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsed
		}
	}
	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected")
	}
	presenceCache := cache.NewPresenceCache(redisCache)
	snapshotCache := cache.NewSnapshotCache(redisCache)

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	seenRepo := repository.NewMessageSeenRepository(db)
	statusRepo := repository.NewOnlineStatusRepository(db)
	chatPinRepo := repository.NewChatPinRepository(db)

	uploadRoot := os.Getenv("UPLOAD_ROOT")
	if uploadRoot == "" {
		uploadRoot = "./data"
	}
	maxUpload := int64(16 * 1024 * 1024)
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			maxUpload = parsed
		}
	}
	store, err := storage.NewAttachmentStore(uploadRoot, maxUpload)
	if err != nil {
		log.Fatal("Failed to initialize attachment store:", err)
	}
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("Attachment mirror not configured: %v", err)
	} else if mirror, err := storage.NewS3Mirror(cfg); err != nil {
		log.Printf("WARNING: failed to initialize attachment mirror: %v", err)
	} else {
		store.SetMirror(mirror)
		log.Printf("Attachment mirror initialized (bucket=%s)", cfg.Bucket)
	}

	hub := ws.NewHub()
	broadcaster := ws.NewBroadcaster(hub)

	unreadService := service.NewUnreadService(messageRepo, snapshotCache)
	authService := service.NewAuthService(userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, groupRepo, seenRepo, store, unreadService, broadcaster, snapshotCache)
	groupService := service.NewGroupService(groupRepo, userRepo, messageRepo, broadcaster)
	presenceService := service.NewPresenceService(statusRepo, presenceCache)
	pinService := service.NewPinService(chatPinRepo, broadcaster)

	// Presence transitions fire from the hub so connections it drops on its
	// own (dead pings, failed writes) still flip users offline.
	hub.OnFirstConnect = func(userID uint) {
		if err := presenceService.SetOnline(userID); err != nil {
			log.Printf("failed to mark user %d online: %v", userID, err)
		}
		broadcaster.UserConnected(userID)
	}
	hub.OnLastDisconnect = func(userID uint) {
		if err := presenceService.SetOffline(userID); err != nil {
			log.Printf("failed to mark user %d offline: %v", userID, err)
		}
		broadcaster.UserDisconnected(userID)
	}

	wsHandler := handlers.NewWebSocketHandler(hub, messageService, groupService, presenceService, pinService, unreadService)
	authHandler := handlers.NewAuthHandler(authService)
	messageHandler := handlers.NewMessageHandler(messageService)
	groupHandler := handlers.NewGroupHandler(groupService, messageService)
	userHandler := handlers.NewUserHandler(userRepo, presenceService, unreadService)
	pinHandler := handlers.NewPinHandler(pinService)
	attachmentHandler := handlers.NewAttachmentHandler(store)

	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", middleware.AuthRequired(), authHandler.Logout)

	protected := api.Group("/", middleware.AuthRequired())

	// Static segments before the :peer_id parameter route.
	protected.Get("/messages/search", messageHandler.Search)
	protected.Get("/messages/pinned", messageHandler.Pinned)
	protected.Post("/messages/pin", messageHandler.Pin)
	protected.Get("/messages/:id/seen", messageHandler.SeenUsers)
	protected.Get("/messages/:peer_id", messageHandler.GetConversation)

	protected.Get("/groups", groupHandler.List)
	protected.Post("/groups", groupHandler.Create)
	protected.Get("/groups/:id/members", groupHandler.Members)
	protected.Post("/groups/:id/members", groupHandler.AddMember)
	protected.Delete("/groups/:id/members", groupHandler.RemoveMember)
	protected.Get("/groups/:id/messages", groupHandler.Messages)
	protected.Post("/groups/:id/messages/pin", groupHandler.PinMessage)

	protected.Get("/chat_pins", pinHandler.List)
	protected.Post("/chat_pins", pinHandler.Set)

	protected.Get("/online_users", userHandler.OnlineUsers)
	protected.Get("/users", userHandler.List)
	protected.Get("/users/:id/status", userHandler.Status)
	protected.Get("/unread_counts", userHandler.UnreadCounts)

	protected.Get("/uploads/*", attachmentHandler.Download)

	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"connections": hub.ConnectionCount(),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
