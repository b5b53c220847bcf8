package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/authgate/authgate/internal/account"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/mailer"
	"github.com/authgate/authgate/internal/middleware"
	"github.com/authgate/authgate/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Outside of dev the
// database is mandatory; in dev a nil pool falls back to the in-memory
// repository and a nil cache disables the idempotency layer.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var repo account.Repository
	if d.DB != nil {
		repo = account.NewPostgresRepository(d.DB)
	} else {
		repo = account.NewMemoryRepository()
	}

	engine := token.NewEngine(
		[]byte(d.Cfg.SecretKey),
		d.Cfg.AccessTokenTTL,
		d.Cfg.VerifyTokenTTL,
		d.Cfg.ResetTokenTTL,
	)

	var mail mailer.Mailer
	if d.Cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUser, d.Cfg.SMTPPass, d.Cfg.BaseURL)
	} else {
		mail = mailer.NewLogMailer(logging.WithComponent(d.Logger, "mailer"))
	}

	svc := account.NewService(repo, engine, mail, logging.WithComponent(d.Logger, "account"))
	handler := account.NewHandler(svc, d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, handler)

	// Protected routes
	protected := api.Group("", middleware.BearerAuth(svc))
	protected.Get("/me", handler.Me)

	return nil
}
