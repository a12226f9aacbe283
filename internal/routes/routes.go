package routes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/apex-admissions/admission_api/internal/admission"
	"github.com/apex-admissions/admission_api/internal/config"
	"github.com/apex-admissions/admission_api/internal/middleware"
	"github.com/apex-admissions/admission_api/internal/notification"
	"github.com/apex-admissions/admission_api/internal/otp"
	"github.com/apex-admissions/admission_api/internal/payment"
	"github.com/apex-admissions/admission_api/internal/validation"
	"github.com/apex-admissions/admission_api/internal/worker"
)

// Deps aggregates shared dependencies required to wire routes.
// DB and Cache are optional. Notifier and Gateway override the ones built
// from Cfg when set.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Pool     *worker.Pool
	Notifier notification.Notifier
	Gateway  payment.Gateway
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.Cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Idempotency-Key,X-Request-ID",
	}))

	notifier, err := buildNotifier(d)
	if err != nil {
		return err
	}
	validator := validation.New()

	var otpManager *otp.Manager
	if notifier != nil {
		otpManager, err = otp.NewManager(otp.NewMemoryStore(), notifier,
			otp.WithTTL(d.Cfg.OTPTTL), otp.WithLogger(d.Logger))
		if err != nil {
			return err
		}
	} else {
		d.Logger.Warn("SMTP credentials are not set; OTP and admin emails are disabled")
	}

	broker, verifier := buildPayments(d)

	var submissions admission.Repository
	if d.DB != nil {
		repo := admission.NewPostgresRepository(d.DB)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			return err
		}
		submissions = repo
	} else {
		submissions = admission.NewMemoryRepository()
	}
	admissionSvc := admission.NewService(submissions, notifier, d.Pool, d.Cfg.AdminEmail, d.Logger)

	otpHandler := otp.NewHandler(otpManager, validator, d.Logger)
	admissionHandler := admission.NewHandler(admissionSvc, d.Logger)
	paymentHandler := payment.NewHandler(broker, verifier, d.Logger)

	RegisterHealthRoutes(app, d, notifier != nil, broker != nil)

	api := app.Group("/api")
	api.Post("/send-otp", otpHandler.Send)
	api.Post("/verify-otp", otpHandler.Verify)
	api.Post("/notify-admin", admissionHandler.NotifyAdmin)
	api.Post("/create-order", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), paymentHandler.CreateOrder)
	api.Post("/payment-verification", paymentHandler.Verify)

	return nil
}

// buildNotifier returns nil when email delivery is not configured.
func buildNotifier(d Deps) (notification.Notifier, error) {
	if d.Notifier != nil {
		return d.Notifier, nil
	}
	smtp := d.Cfg.SMTP
	if smtp.DryRun {
		d.Logger.Info("MAIL_DRY_RUN enabled; emails are logged instead of sent")
		return notification.NewLoggerNotifier(d.Logger), nil
	}
	if !smtp.Configured() {
		return nil, nil
	}
	n, err := notification.NewSMTPNotifier(notification.SMTPConfig{
		Host:     smtp.Host,
		Port:     smtp.Port,
		User:     smtp.User,
		Password: smtp.Password,
		Secure:   smtp.Secure,
		From:     smtp.From,
	})
	if err != nil {
		return nil, err
	}
	if d.Pool != nil {
		_ = d.Pool.Go(context.Background(), "smtp_verify", func(context.Context) error {
			if err := n.Ping(); err != nil {
				return fmt.Errorf("smtp relay check: %w", err)
			}
			d.Logger.Info("SMTP relay is ready", slog.String("host", smtp.Host))
			return nil
		})
	}
	return n, nil
}

// buildPayments returns a nil broker when keys or fee are missing and a nil
// verifier when the secret is missing.
func buildPayments(d Deps) (*payment.Broker, *payment.Verifier) {
	rp := d.Cfg.Razorpay

	var verifier *payment.Verifier
	if v, err := payment.NewVerifier(rp.KeySecret); err == nil {
		verifier = v
	}

	gateway := d.Gateway
	if gateway == nil {
		client, err := payment.NewRazorpayClient(rp.BaseURL, rp.KeyID, rp.KeySecret)
		if err != nil {
			d.Logger.Warn("Razorpay credentials are not set; payment order creation is disabled")
			return nil, verifier
		}
		gateway = client
	}

	broker, err := payment.NewBroker(payment.BrokerConfig{KeyID: rp.KeyID, KeySecret: rp.KeySecret, Fee: rp.Fee}, gateway, d.Logger)
	if err != nil {
		d.Logger.Warn("payment gateway not configured", slog.Int64("fee", rp.Fee), slog.Any("error", err))
		return nil, verifier
	}
	return broker, verifier
}
