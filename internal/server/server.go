package server

import (
	"context"

	"backend-bloghub/internal/auth"
	"backend-bloghub/internal/blog"
	"backend-bloghub/internal/config"
	"backend-bloghub/internal/media"
	"backend-bloghub/internal/shared/apperror"
	"backend-bloghub/internal/stream"
	"backend-bloghub/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Hub     *stream.Hub
	Cleaner *media.Cleaner
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.Handler(cfg.Production()),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Hub:     stream.NewHub(redisClient),
		Cleaner: media.NewCleaner(media.NewClient(cfg.MediaBaseURL, cfg.MediaAPIKey)),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	store := media.NewClient(s.Cfg.MediaBaseURL, s.Cfg.MediaAPIKey)

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB, auth.NewRevocations(s.Redis))
	requireAuth := auth.Required(authSvc)
	optionalAuth := auth.Optional(authSvc)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	user.RegisterRoutes(s.App.Group("/users"), user.NewService(s.DB, s.Cleaner, s.Hub), requireAuth)
	blog.RegisterRoutes(s.App.Group("/blogs"), blog.NewService(s.DB, s.Cleaner, s.Hub), requireAuth, optionalAuth)
	media.RegisterRoutes(s.App.Group("/media"), store, requireAuth)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Hub, func(ctx context.Context, token string) (string, error) {
		u, err := authSvc.Verify(ctx, token)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	})
}

// Close stops background workers owned by the server.
func (s *Server) Close() {
	s.Cleaner.Close()
}
