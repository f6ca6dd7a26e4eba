package server

import (
	"context"
	"fmt"
	"time"

	"wayfarer/internal/cache"
	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/featureflags"
	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/notifications"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	flags          *featureflags.Manager

	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	replyRepo     repository.ReplyRepository
	voteRepo      repository.VoteRepository
	reportRepo    repository.ReportRepository
	reviewRepo    repository.ReviewRepository
	contactRepo   repository.ContactRepository
	contestRepo   repository.ContestRepository
	banRepo       repository.BanRepository
	directoryRepo repository.DirectoryRepository

	notifier *notifications.Notifier

	userService       *service.UserService
	postService       *service.PostService
	replyService      *service.ReplyService
	voteService       *service.VoteService
	reportService     *service.ReportService
	reviewService     *service.ReviewService
	contactService    *service.ContactService
	contestService    *service.ContestService
	banService        *service.BanService
	reputationService *service.ReputationService
	imageService      *service.ImageService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("wayfarer-api"),
		flags:          featureflags.NewManager(cfg.FeatureFlags),

		userRepo:      repository.NewUserRepository(db),
		postRepo:      repository.NewPostRepository(db),
		replyRepo:     repository.NewReplyRepository(db),
		voteRepo:      repository.NewVoteRepository(db),
		reportRepo:    repository.NewReportRepository(db),
		reviewRepo:    repository.NewReviewRepository(db),
		contactRepo:   repository.NewContactRepository(db),
		contestRepo:   repository.NewContestRepository(db),
		banRepo:       repository.NewBanRepository(db),
		directoryRepo: repository.NewDirectoryRepository(db),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	s.userService = service.NewUserService(s.userRepo)
	s.postService = service.NewPostService(s.postRepo)
	s.replyService = service.NewReplyService(s.replyRepo, s.postRepo)
	s.voteService = service.NewVoteService(s.voteRepo, s.replyRepo)
	s.reportService = service.NewReportService(s.reportRepo, s.postRepo, s.replyRepo, s.notifier)
	s.reviewService = service.NewReviewService(s.reviewRepo, s.directoryRepo)
	s.contactService = service.NewContactService(s.contactRepo, s.directoryRepo, s.notifier, cfg.AdminEmail)
	s.imageService = service.NewImageService(cfg)
	s.contestService = service.NewContestService(s.contestRepo, s.imageService)
	s.banService = service.NewBanService(s.banRepo, s.userRepo)
	s.reputationService = service.NewReputationService(s.userRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limit, 100 requests per minute per IP.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks.
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Wayfarer Backend Metrics Dashboard",
	}))

	banGuard := middleware.BanGuard(s.banService.EffectiveStatus)

	// Auth routes.
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, "register", 3, 10*time.Minute, middleware.FailOpen), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, "login", 10, 5*time.Minute, middleware.FailOpen), s.Login)

	// Public directory routes.
	objectives := api.Group("/objectives")
	objectives.Get("/", s.GetObjectives)
	objectives.Get("/:slug", s.GetObjectiveBySlug)
	guides := api.Group("/guides")
	guides.Get("/", s.GetGuides)
	guides.Get("/:slug", s.GetGuideBySlug)

	// Public forum browse. OptionalAuth so owners and moderators can see
	// hidden posts they are entitled to.
	posts := api.Group("/forum/posts", middleware.OptionalAuth)
	posts.Get("/", s.GetPosts)
	posts.Get("/slug/:slug", s.GetPostBySlug)
	posts.Get("/:id/thread", s.GetThread)
	posts.Get("/:id", s.GetPost)

	// Public review browse.
	api.Get("/reviews", middleware.OptionalAuth, s.GetReviews)

	// Public contact submissions, rate limited per IP.
	contact := api.Group("/contact")
	contact.Post("/messages", middleware.RateLimit(
		s.redis, "contact_message", 5, 10*time.Minute, middleware.FailOpen), s.SubmitContactMessage)
	contact.Post("/inquiries", middleware.RateLimit(
		s.redis, "inquiry", 5, 10*time.Minute, middleware.FailOpen), s.SubmitInquiry)
	contact.Post("/bookings", middleware.RateLimit(
		s.redis, "booking", 3, 10*time.Minute, middleware.FailOpen), s.SubmitBooking)

	// Public contest browse and image serving.
	contests := api.Group("/contests")
	contests.Get("/", s.GetContests)
	contests.Get("/:id/entries", middleware.OptionalAuth, s.GetContestEntries)
	contests.Get("/:id/tally", s.GetContestTally)
	contests.Get("/:id", s.GetContest)
	app.Get("/media/contest/:key", s.ServeContestImage)

	// Public reputation lookup.
	api.Get("/users/:id/reputation", s.GetReputation)

	// Protected routes. The ban guard runs after auth so banned and
	// suspended accounts are blocked from every write surface.
	protected := api.Group("", middleware.AuthRequired, banGuard)

	me := protected.Group("/me")
	me.Get("/flags", s.GetMyFlags)
	me.Get("/", s.GetMyProfile)
	me.Put("/", s.UpdateMyProfile)

	writePosts := protected.Group("/forum/posts")
	writePosts.Post("/", middleware.RateLimit(
		s.redis, "create_post", 5, 5*time.Minute, middleware.FailOpen), s.CreatePost)
	writePosts.Post("/:id/replies", middleware.RateLimit(
		s.redis, "create_reply", 15, 5*time.Minute, middleware.FailOpen), s.CreateReply)
	writePosts.Put("/:id", s.UpdatePost)

	replies := protected.Group("/forum/replies")
	replies.Post("/:id/vote", s.VoteReply)
	replies.Get("/:id/vote", s.GetVoteState)
	replies.Put("/:id", s.UpdateReply)
	replies.Delete("/:id", s.DeleteReply)

	protected.Post("/reports", middleware.RateLimit(
		s.redis, "report", 10, 10*time.Minute, middleware.FailOpen), s.CreateReport)

	reviews := protected.Group("/reviews")
	reviews.Post("/", s.CreateReview)
	reviews.Post("/:id/helpful", s.MarkReviewHelpful)

	protected.Post("/contests/:id/entries", middleware.RateLimit(
		s.redis, "contest_entry", 5, time.Hour, middleware.FailOpen), s.SubmitContestEntry)
	protected.Post("/contests/entries/:id/vote", s.VoteContestEntry)

	// Moderation surface: editors and admins.
	mod := protected.Group("/moderation", middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	mod.Get("/reports", s.GetReports)
	mod.Post("/reports/:id/:action", s.CloseReport)
	mod.Post("/posts/:id/flags", s.SetPostFlags)
	mod.Post("/posts/:id/:action", s.ModeratePost)
	mod.Post("/reviews/:id/:action", s.ModerateReview)
	mod.Delete("/reviews/:id", s.DeleteReview)
	mod.Post("/contests/entries/:id/:action", s.ModerateContestEntry)
	mod.Get("/users/:id/bans", s.GetBanHistory)

	// Admin surface.
	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", s.GetUsers)
	admin.Put("/users/:id/role", s.ChangeUserRole)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Delete("/forum/posts/:id", s.DeletePost)
	admin.Post("/bans", s.ApplyBan)
	admin.Delete("/bans/:id", s.LiftBan)
	admin.Get("/inbox/messages", s.GetContactMessages)
	admin.Post("/inbox/messages/:id/:action", s.TransitionContactMessage)
	admin.Get("/inbox/inquiries", s.GetInquiries)
	admin.Post("/inbox/inquiries/:id/:action", s.TransitionInquiry)
	admin.Get("/inbox/bookings", s.GetBookings)
	admin.Post("/inbox/bookings/:id/:action", s.TransitionBooking)
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(_ context.Context) error {
	var firstErr error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
