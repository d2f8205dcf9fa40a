package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/mountarc/mountarc-api/config"
	"github.com/mountarc/mountarc-api/internal/handlers"
	"github.com/mountarc/mountarc-api/internal/middleware"
	"github.com/mountarc/mountarc-api/internal/ratelimit"
	"github.com/mountarc/mountarc-api/internal/services"
	"github.com/mountarc/mountarc-api/internal/templates"
	"github.com/mountarc/mountarc-api/internal/validation"
	"github.com/mountarc/mountarc-api/pkg/httpclient"
	"github.com/mountarc/mountarc-api/pkg/logger"
	"github.com/mountarc/mountarc-api/pkg/mailer"
	"github.com/mountarc/mountarc-api/pkg/metrics"
	"github.com/mountarc/mountarc-api/pkg/profiling"
	"github.com/mountarc/mountarc-api/pkg/recaptcha"
	"github.com/mountarc/mountarc-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// newSender picks the mail transport. Without a Resend key the service still
// answers requests but only logs what it would have sent.
func newSender(cfg *config.Config, httpClient httpclient.Client) (mailer.Sender, error) {
	switch {
	case cfg.Mail.Driver == config.MailDriverMbox:
		return mailer.NewMboxSender(cfg.Mail.MboxPath)
	case cfg.Mail.ResendAPIKey == "":
		logger.Warn("RESEND_API_KEY not set - emails will be logged instead of sent")
		return mailer.LogSender{}, nil
	default:
		return mailer.NewResendClient(mailer.ResendConfig{
			APIKey: cfg.Mail.ResendAPIKey,
			APIURL: cfg.Mail.ResendAPIURL,
		}, httpClient), nil
	}
}

// registerRoutes wires the public API surface
func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	formRateLimiter *middleware.RateLimiter,
	healthHandler *handlers.HealthHandler,
	sendEmailHandler *handlers.SendEmailHandler,
) {
	api := router.Group("/api")
	api.GET("/healthcheck", healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	api.POST("/send-email",
		formRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(cfg.Server.MaxBodyBytes),
		sendEmailHandler.SendEmail,
	)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MountArc API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("mail_driver", cfg.Mail.Driver),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (no-op unless enabled)
	stopProfiler, err := profiling.InitProfiler(profiling.Config{
		Enabled:               cfg.Profiling.Enabled,
		Endpoint:              cfg.Profiling.Endpoint,
		AppName:               cfg.Profiling.AppName,
		SampleTypes:           cfg.Profiling.SampleTypes,
		UploadIntervalSeconds: cfg.Profiling.UploadIntervalSeconds,
		ServiceName:           cfg.Observability.ServiceName,
		Namespace:             cfg.Observability.ServiceNamespace,
		Version:               cfg.Observability.ServiceVersion,
		InstanceID:            cfg.Observability.ServiceInstanceID,
		Environment:           cfg.Server.AppEnv,
	})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	// Initialize HTTP client for external API calls
	httpClient := httpclient.NewStandardClient(cfg.ExternalTimeout())

	location, err := time.LoadLocation(cfg.Brand.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.String("timezone", cfg.Brand.Timezone), zap.Error(err))
	}

	renderer, err := templates.NewRenderer(templates.Brand{
		CompanyName:  cfg.Brand.CompanyName,
		LegalName:    cfg.Brand.LegalName,
		WebsiteURL:   cfg.Brand.WebsiteURL,
		LinkedInURL:  cfg.Brand.LinkedInURL,
		ContactEmail: cfg.Brand.ContactEmail,
		Location:     location,
	})
	if err != nil {
		logger.Fatal("Failed to parse email templates", zap.Error(err))
	}

	sender, err := newSender(cfg, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize mail sender", zap.Error(err))
	}

	captcha := recaptcha.NewVerifier(recaptcha.Config{
		SecretKey: cfg.ReCAPTCHA.SecretKey,
		Enforced:  cfg.ReCAPTCHA.Enforced,
		MinScore:  cfg.ReCAPTCHA.MinScore,
		VerifyURL: cfg.ReCAPTCHA.VerifyURL,
	}, httpClient)

	// Initialize services
	dispatchService := services.NewDispatchService(
		services.DispatchConfig{
			From:            cfg.Mail.From,
			ReplyTo:         cfg.Mail.ReplyTo,
			RecipientEmail:  cfg.Mail.RecipientEmail,
			ExternalTimeout: cfg.ExternalTimeout(),
		},
		captcha,
		ratelimit.NewMemoryStore(cfg.RateLimitWindow(), cfg.RateLimit.MaxPerWindow),
		validation.New(),
		renderer,
		sender,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(handlers.HealthStatus{
		MailProvider:    sender.Provider(),
		CaptchaEnforced: captcha.Enforced(),
	})
	sendEmailHandler := handlers.NewSendEmailHandler(dispatchService)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(services.MsgInternal))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: the website is the only browser caller
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// Coarse per-IP limiter; the per-email window lives in the dispatch service
	formRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.IPRequestsPerS), cfg.RateLimit.IPBurst)
	defer formRateLimiter.Stop()

	registerRoutes(router, cfg, formRateLimiter, healthHandler, sendEmailHandler)

	// Captcha plus two sends, each bounded by the external timeout
	writeTimeout := 3*cfg.ExternalTimeout() + 5*time.Second

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ExternalTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
