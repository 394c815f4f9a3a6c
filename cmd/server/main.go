package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appevent "github.com/transitpay/settlement/internal/application/event"
	appinvoice "github.com/transitpay/settlement/internal/application/invoice"
	appnotification "github.com/transitpay/settlement/internal/application/notification"
	apppayment "github.com/transitpay/settlement/internal/application/payment"
	appwebhook "github.com/transitpay/settlement/internal/application/webhook"
	"github.com/transitpay/settlement/internal/infrastructure/cache"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"github.com/transitpay/settlement/internal/infrastructure/email"
	"github.com/transitpay/settlement/internal/infrastructure/event"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/persistence"
	"github.com/transitpay/settlement/internal/infrastructure/printing"
	"github.com/transitpay/settlement/internal/infrastructure/processor"
	"github.com/transitpay/settlement/internal/infrastructure/scheduler"
	"github.com/transitpay/settlement/internal/infrastructure/storage"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
	"github.com/transitpay/settlement/internal/interfaces/http/handler"
	"github.com/transitpay/settlement/internal/interfaces/http/middleware"
	"github.com/transitpay/settlement/internal/interfaces/http/router"

	_ "github.com/transitpay/settlement/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Settlement API
//	@version		1.0
//	@description	Payment intents, refunds, vaulted payment methods and the invoice ledger for parking and transit settlement.

//	@license.name	MIT

//	@BasePath	/api/v1

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// processedEventRetention keeps webhook ids well past Stripe's three day
// redelivery window.
const processedEventRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.Logs.IsEnabled() {
		// Rebuild with the OTLP bridge teed in so every entry is exported.
		logCfg.Cores = []zapcore.Core{providers.Logs.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))}
		if log, err = logger.New(logCfg, cfg.App.Name); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting settlement service",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	metrics, err := telemetry.NewSettlementMetrics(providers.Meter.Meter("settlement"))
	if err != nil {
		log.Fatal("Failed to register settlement metrics", zap.Error(err))
	}

	// Persistence: every write goes through the scope so outbox rows commit
	// with the aggregate they describe.
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	publisher := event.NewOutboxPublisher(serializer).WithMaxRetries(cfg.Event.MaxRetries)
	scope := persistence.NewGormTransactionScope(db.DB, publisher)
	reads := persistence.NewRepositories(db.DB, publisher)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	notificationLogs := persistence.NewGormNotificationLogRepository(db.DB)

	stripeProcessor, err := processor.NewStripeProcessor(cfg.Stripe, log)
	if err != nil {
		log.Fatal("Failed to initialize payment processor", zap.Error(err))
	}

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cache.StoreOptions{RequireRedis: cfg.IsProduction()}, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotency.Close()
	}()

	documents, closeDocuments := newDocumentRenderer(ctx, cfg, log)
	defer closeDocuments()

	// Application services
	paymentCfg := apppayment.IntentServiceConfig{
		Scope:     scope,
		Reads:     reads,
		Processor: stripeProcessor,
		Metrics:   metrics,
		Logger:    log,
	}
	intentService := apppayment.NewIntentService(paymentCfg)
	refundService := apppayment.NewRefundService(paymentCfg)
	methodService := apppayment.NewMethodService(paymentCfg)

	ledgerCfg := appinvoice.LedgerServiceConfig{
		Scope:              scope,
		Reads:              reads,
		Metrics:            metrics,
		ReminderDaysBefore: cfg.Scheduler.ReminderDaysBefore,
		Logger:             log,
	}
	if documents != nil {
		ledgerCfg.Documents = documents
	}
	ledgerService := appinvoice.NewLedgerService(ledgerCfg)

	dispatcher := appnotification.NewDispatcher(
		email.NewSender(cfg.Email, cfg.Notification.MaxAttachmentBytes, log),
		notificationLogs, metrics, log,
	)

	ingestor, err := appwebhook.NewIngestor(appwebhook.IngestorConfig{
		Scope:     scope,
		Secret:    cfg.Stripe.WebhookSecret,
		Tolerance: cfg.Stripe.WebhookTolerance,
		Seen:      idempotency,
		Metrics:   metrics,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("Failed to initialize webhook ingestor", zap.Error(err))
	}

	// Event bus: notification handlers run off committed outbox rows, each
	// guarded so a redelivered entry does not mail twice.
	eventBus := event.NewInMemoryEventBus(log)
	var invoiceDocs appnotification.DocumentRenderer
	if documents != nil {
		invoiceDocs = documents
	}
	invoiceNotifications := appnotification.NewInvoiceHandler(dispatcher, reads, invoiceDocs, cfg.Notification.AttachInvoicePDF, log)
	refundNotifications := appnotification.NewRefundHandler(dispatcher, reads, log)
	eventBus.Subscribe(event.NewIdempotentHandler("invoice_notifications", invoiceNotifications, idempotency, cfg.Event.IdempotencyTTL, log))
	eventBus.Subscribe(event.NewIdempotentHandler("refund_notifications", refundNotifications, idempotency, cfg.Event.IdempotencyTTL, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupEnabled:   cfg.Event.CleanupEnabled,
		CleanupRetention: cfg.Event.CleanupRetention,
		CleanupInterval:  time.Hour,
	}, log)
	outboxProcessor.SetRecorder(metrics)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			_ = outboxProcessor.Stop(context.Background())
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}
	outboxService := appevent.NewOutboxService(outboxRepo, outboxProcessor, log)

	if cfg.Scheduler.Enabled {
		trigger := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			Hour:          cfg.Scheduler.ReminderHour,
			CheckInterval: cfg.Scheduler.CheckInterval,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			Location:      time.UTC,
		}, log,
			scheduler.NewReminderJob(ledgerService, log),
			scheduler.NewRetentionJob("processed_webhook_events", persistence.NewGormProcessedEventRepository(db.DB), processedEventRetention, log),
		)
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			_ = trigger.Stop(context.Background())
		}()
		log.Info("Reminder scheduler started", zap.Int("hour", cfg.Scheduler.ReminderHour))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(providers.Meter.Meter("settlement.http"))
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	// Middleware order: request id first so every later layer can log it,
	// body limit before rate limiting so oversized uploads are cut early.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	// The webhook handler enforces its own, smaller limit.
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, "/webhooks/stripe"))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var swagger []gin.HandlerFunc
	if cfg.Swagger.Enabled {
		swagger = []gin.HandlerFunc{
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:    cfg.Swagger.Enabled,
				AllowedIPs: cfg.Swagger.AllowedIPs,
			}, log),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		}
	}

	router.Mount(engine, router.Handlers{
		Intents:       handler.NewIntentHandler(intentService, refundService),
		Invoices:      handler.NewInvoiceHandler(ledgerService),
		Methods:       handler.NewMethodHandler(methodService),
		Notifications: handler.NewNotificationHandler(dispatcher),
		Outbox:        handler.NewOutboxHandler(outboxService),
		Webhooks:      handler.NewWebhookHandler(ingestor, cfg.HTTP.WebhookMaxBody),
		System:        handler.NewSystemHandler(db, cfg.App.Name, version),
	}, swagger)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// Stop background loops before the deferred closes release their
	// dependencies.
	stop()

	log.Info("Server exited gracefully")
}

// newDocumentRenderer builds the invoice PDF pipeline. It returns nil when
// documents are disabled, which the ledger reports as DOCUMENTS_DISABLED.
func newDocumentRenderer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*printing.InvoiceDocuments, func()) {
	if !cfg.Document.Enabled {
		return nil, func() {}
	}

	renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		DefaultTimeout: cfg.Document.Timeout,
		RemoteURL:      cfg.Document.ChromeRemoteURL,
		NoSandbox:      true,
		Logger:         log,
	})

	var archive printing.Archiver
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize document archive", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Document archive bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		archive = s3
	}

	return printing.NewInvoiceDocuments(renderer, archive, log), func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Failed to close PDF renderer", zap.Error(err))
		}
	}
}
