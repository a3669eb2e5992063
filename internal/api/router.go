package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/assessly/assessment-api/docs"
	"github.com/assessly/assessment-api/internal/api/handler"
	"github.com/assessly/assessment-api/internal/api/middleware"
	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
	"github.com/assessly/assessment-api/internal/core/service"
	"github.com/assessly/assessment-api/internal/infrastructure/config"
	mongodb "github.com/assessly/assessment-api/internal/infrastructure/db/mongo"
	redisdb "github.com/assessly/assessment-api/internal/infrastructure/db/redis"
	"github.com/assessly/assessment-api/internal/infrastructure/email"
	"github.com/assessly/assessment-api/internal/infrastructure/payment"
	"github.com/assessly/assessment-api/internal/pkg/token"
)

// NewRouter wires repositories, services, and handlers, and returns the Echo
// instance with all routes registered. The token manager is constructed here
// from the validated config; a missing secret has already failed startup.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("assessly"))

	// --- Infrastructure ---
	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
	})
	if err != nil {
		return nil, err
	}

	var sender ports.EmailSender = email.NewDisabledSender(log)
	if cfg.EmailEnabled() {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, log)
	}

	provider := payment.NewStripeProvider(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.AppBaseURL + "/billing/success",
		CancelURL:     cfg.AppBaseURL + "/billing/cancel",
	})

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	orgs := mongodb.NewOrganizationRepository(db)
	assessments := mongodb.NewAssessmentRepository(db)
	invitations := mongodb.NewInvitationRepository(db)
	submissions := mongodb.NewSubmissionRepository(db)
	subscriptions := mongodb.NewSubscriptionRepository(db)
	dedup := redisdb.NewWebhookDedup(rdb)

	// --- Services ---
	billingService := service.NewBillingService(subscriptions, orgs, users, provider, sender, dedup, log)
	authService := service.NewAuthService(users, orgs, tokens, sender, log)
	assessmentService := service.NewAssessmentService(assessments, billingService, log)
	invitationService := service.NewInvitationService(invitations, submissions, assessments, billingService, sender, cfg.AppBaseURL, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	billingHandler := handler.NewBillingHandler(billingService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	auth := middleware.Auth(tokens)
	managers := middleware.RBAC(domain.RoleOwner, domain.RoleAdmin)
	owners := middleware.RBAC(domain.RoleOwner)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- Authenticated API ---
	v1 := e.Group("/v1", auth)
	v1.GET("/me", authHandler.Me)

	v1.POST("/assessments", assessmentHandler.Create, managers)
	v1.GET("/assessments", assessmentHandler.List)
	v1.GET("/assessments/:id", assessmentHandler.Get)
	v1.PUT("/assessments/:id", assessmentHandler.Update, managers)
	v1.POST("/assessments/:id/questions", assessmentHandler.AddQuestion, managers)
	v1.DELETE("/assessments/:id/questions/:question_id", assessmentHandler.RemoveQuestion, managers)
	v1.POST("/assessments/:id/publish", assessmentHandler.Publish, managers)
	v1.POST("/assessments/:id/archive", assessmentHandler.Archive, managers)

	v1.POST("/invitations", invitationHandler.Create)
	v1.GET("/invitations/:id/result", invitationHandler.Result)
	v1.DELETE("/invitations/:id", invitationHandler.Revoke)

	v1.GET("/billing/subscription", billingHandler.Subscription)
	v1.POST("/billing/checkout", billingHandler.Checkout, managers)
	v1.POST("/billing/cancel", billingHandler.Cancel, owners)

	// --- Candidate routes (invite token is the credential) ---
	e.GET("/v1/billing/plans", billingHandler.Plans)
	e.POST("/v1/invitations/:token/start", invitationHandler.Start)
	e.POST("/v1/invitations/:token/submit", invitationHandler.Submit)

	// --- Webhooks ---
	e.POST("/webhooks/stripe", billingHandler.Webhook)

	// --- Operational endpoints ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}
