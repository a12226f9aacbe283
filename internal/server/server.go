package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/apex-admissions/admission_api/internal/config"
	"github.com/apex-admissions/admission_api/internal/routes"
	"github.com/apex-admissions/admission_api/internal/worker"
)

const notifyTaskTimeout = 30 * time.Second

// Server wraps the Fiber application and the background notification pool.
type Server struct {
	app  *fiber.App
	cfg  config.Config
	pool *worker.Pool
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
// db and cache may be nil.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    1 << 20,
		ErrorHandler: jsonErrorHandler,
	})

	pool := worker.NewPool(cfg.NotifyWorkers, notifyTaskTimeout, logger)
	if err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Pool: pool}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, pool: pool}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown stops accepting requests, then waits for queued notifications.
func (s *Server) Shutdown(ctx context.Context) error {
	httpErr := s.app.ShutdownWithContext(ctx)
	return errors.Join(httpErr, s.pool.Wait(ctx))
}

// jsonErrorHandler keeps error bodies in the {message} shape used by every handler.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}
