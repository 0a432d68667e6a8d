// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "cfp/docs" // swagger docs
	"cfp/internal/cache"
	"cfp/internal/config"
	"cfp/internal/database"
	"cfp/internal/featureflags"
	"cfp/internal/mailer"
	"cfp/internal/middleware"
	"cfp/internal/models"
	"cfp/internal/notifications"
	"cfp/internal/repository"
	"cfp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo        repository.UserRepository
	congeRepo       repository.CongeRepository
	permissionRepo  repository.PermissionRepository
	notifRepo       repository.NotificationRepository
	messageRepo     repository.MessageRepository
	formationRepo   repository.FormationRepository
	inscriptionRepo repository.InscriptionRepository

	mailer       mailer.Mailer
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	workflowService     *service.WorkflowService
	demandeService      *service.DemandeService
	notificationService *service.NotificationService
	messageService      *service.MessageService
	formationService    *service.FormationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("cfp-api"),
		userRepo:        repository.NewUserRepository(db),
		congeRepo:       repository.NewCongeRepository(db),
		permissionRepo:  repository.NewPermissionRepository(db),
		notifRepo:       repository.NewNotificationRepository(db),
		messageRepo:     repository.NewMessageRepository(db),
		formationRepo:   repository.NewFormationRepository(db),
		inscriptionRepo: repository.NewInscriptionRepository(db),
		mailer:          mailer.NewFromConfig(cfg.SendgridAPIKey, cfg.EmailFrom, cfg.EmailFromName),
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}

	server.workflowService = service.NewWorkflowService(
		db, server.userRepo, server.congeRepo, server.permissionRepo, server.inscriptionRepo,
		server.notifRepo, server.mailer, server.notifier, cfg.FrontendURL)
	server.demandeService = service.NewDemandeService(
		db, server.userRepo, server.congeRepo, server.permissionRepo, server.notifRepo,
		server.mailer, server.notifier)
	server.notificationService = service.NewNotificationService(server.notifRepo, cfg.NotificationRetentionDays)
	server.messageService = service.NewMessageService(server.messageRepo, server.userRepo)
	server.formationService = service.NewFormationService(
		server.formationRepo, server.inscriptionRepo, server.userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing spans
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Trop de requêtes, réessayez plus tard.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "CFP Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Public catalog browse
	publicFormations := api.Group("/formations")
	publicFormations.Get("/", s.GetFormations)
	publicFormations.Get("/:id/ateliers", s.GetAteliers)
	publicFormations.Get("/:id", s.GetFormation)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Get("/me", s.GetMyProfile)

	// WebSocket ticket issuance
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)

	// Leave and permission requests
	demandes := protected.Group("/conges-permissions")

	conges := demandes.Group("/conges")
	conges.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "submit_conge"), s.SubmitConge)
	conges.Get("/", s.GetConges)
	conges.Put("/:id/status", s.AdminRequired(), s.DecideConge)

	permissions := demandes.Group("/permissions")
	permissions.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "submit_permission"), s.SubmitPermission)
	permissions.Get("/", s.GetPermissions)
	permissions.Put("/:id/status", s.AdminRequired(), s.DecidePermission)

	// Enrollments and payments
	formations := protected.Group("/formations")
	formations.Post("/", s.AdminRequired(), s.CreateFormation)
	formations.Post("/:id/ateliers", s.AdminRequired(), s.CreateAtelier)
	formations.Post("/:id/inscriptions", s.Enroll)
	formations.Get("/:id/inscriptions", s.GetInscriptions)
	formations.Put("/:id", s.AdminRequired(), s.UpdateFormation)
	formations.Delete("/:id", s.AdminRequired(), s.DeleteFormation)

	inscriptions := protected.Group("/inscriptions")
	inscriptions.Get("/me", s.GetMyInscriptions)
	inscriptions.Put("/:id/status", s.AdminRequired(), s.DecideInscription)
	inscriptions.Post("/:id/paiements", s.AdminRequired(), s.RecordPaiement)
	inscriptions.Get("/:id/paiements", s.AdminRequired(), s.GetPaiements)

	// Direct messaging, behind the messagerie feature flag
	messages := protected.Group("/messages", s.FeatureRequired(featureflags.FlagMessagerie))
	messages.Get("/conversations", s.GetConversations)
	messages.Get("/unread-count", s.GetMessageUnreadCount)
	messages.Get("/unread", s.GetMessageUnreadCount)
	messages.Get("/", s.GetConversations)
	messages.Post("/", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	messages.Post("/:userId", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/:userId", s.GetConversation)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/stats", s.GetAdminStats)

	users := admin.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/", s.CreateUser)
	users.Get("/pending", s.GetPendingUsers)
	users.Put("/:id/validate", s.ValidateUser)
	users.Put("/:id/reject", s.RejectUser)
	users.Put("/:id/pending", s.SetUserPending)
	users.Post("/:id/resend-code", s.ResendAccessCode)

	notifs := admin.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetNotificationUnreadCount)
	notifs.Put("/read-all", s.MarkAllNotificationsRead)
	notifs.Put("/:id/read", s.MarkNotificationRead)

	// Notification feed aliases used by the frontend
	notifFeed := protected.Group("/notifications", s.AdminRequired())
	notifFeed.Get("/admin", s.GetNotifications)
	notifFeed.Get("/admin/unread-count", s.GetNotificationUnreadCount)
	notifFeed.Put("/:id/read", s.MarkNotificationRead)

	// WebSocket endpoint, admin feed of the notification stream.
	// Behind the temps_reel feature flag.
	ws := api.Group("/ws", s.AuthRequired(), s.FeatureRequired(featureflags.FlagTempsReel))
	ws.Get("/notifications", s.AdminRequired(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	// Email delivery is best-effort, a degraded mailer does not flip readiness.
	mailerStatus := "healthy"
	if s.mailer != nil && !s.mailer.Healthy(ctx) {
		mailerStatus = "degraded"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"mailer":   mailerStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		user, err := s.userRepo.GetByID(c.UserContext(), userID)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Accès réservé aux administrateurs"))
		}

		return c.Next()
	}
}

// FeatureRequired returns middleware that gates a route group behind a
// feature flag evaluated for the authenticated user.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var userID uint
		if v, ok := c.Locals("userID").(uint); ok {
			userID = v
		}
		if !s.featureFlags.Enabled(flag, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("fonctionnalité", flag))
		}
		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					// Delete ticket immediately (single-use)
					s.redis.Del(c.Context(), key)

					c.Locals("userID", uint(userID))
					ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
					c.SetUserContext(ctx)
					return c.Next()
				}
			}
			// If ticket was provided but invalid/expired, we fail if it's a WS path
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Ticket WebSocket invalide ou expiré"))
			}
		}

		// 2. Fall back to JWT (Bearer token)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentification requise"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Jeton invalide ou expiré"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Jeton invalide ou expiré"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "cfp-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Émetteur de jeton invalide"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "cfp-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Audience de jeton invalide"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Jeton invalide ou expiré"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Jeton invalide ou expiré"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Jeton révoqué"))
				}
			}
		}

		c.Locals("userID", uint(userID))
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "CFP API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the notification hub to the Redis admin channel
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	// Background purge of old read notifications
	s.notificationService.StartRetentionLoop(s.shutdownCtx)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop all wiring goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
