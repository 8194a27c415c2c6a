// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hr-backoffice/internal/api"
	"hr-backoffice/internal/common/auth"
	awsclients "hr-backoffice/internal/common/aws"
	"hr-backoffice/internal/common/config"
	"hr-backoffice/internal/common/database"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/observability"
	"hr-backoffice/internal/common/storage"
	"hr-backoffice/internal/common/validation"
	"hr-backoffice/internal/models"
	"hr-backoffice/internal/store"
	"hr-backoffice/pkg/registry"

	al "hr-backoffice/internal/services/auth/admin-login"
	alo "hr-backoffice/internal/services/auth/admin-logout"
	jc "hr-backoffice/internal/services/catalog/job-catalog"
	ds "hr-backoffice/internal/services/infrastructure/dashboard-stats"
	ia "hr-backoffice/internal/services/intake/index-application"
	sn "hr-backoffice/internal/services/intake/send-notification"
	sa "hr-backoffice/internal/services/intake/submit-application"
	ea "hr-backoffice/internal/services/review/export-applications"
	la "hr-backoffice/internal/services/review/list-applications"
	sra "hr-backoffice/internal/services/review/search-applications"

	"github.com/spf13/afero"
)

const shutdownTimeout = 30 * time.Second

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting hr-backoffice server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := database.Migrate(ctx, pg); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	stores := store.New(pg)
	if err := seedAdmin(ctx, stores.Admins, cfg.Auth, log); err != nil {
		zapLog.Fatal("admin seed failed", zap.Error(err))
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	sessions, err := auth.NewSessionManager(rdb.Client, cfg.Auth.SecretKey, time.Duration(cfg.Auth.SessionTTL)*time.Minute)
	if err != nil {
		zapLog.Fatal("session manager init failed", zap.Error(err))
	}

	// --- File storage ---
	resumes, err := storage.NewOSResumeStore(cfg.Storage.ResumeRoot)
	if err != nil {
		zapLog.Fatal("resume storage init failed", zap.Error(err))
	}
	artifacts, err := storage.NewArtifactStore(afero.NewOsFs(), cfg.Storage.ExportDir)
	if err != nil {
		zapLog.Fatal("export storage init failed", zap.Error(err))
	}

	// --- Request schemas ---
	reg, err := registry.Load(afero.NewOsFs(), cfg.Validation.RegistryPath)
	if err != nil {
		zapLog.Fatal("request registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("request schema compile failed", zap.Error(err))
	}
	zapLog.Info("Request registry loaded", zap.String("version", reg.Version), zap.Int("schemas", len(reg.Requests)))

	// --- Services ---
	loc := cfg.App.Location()

	stats := ds.NewHandler(&ds.Config{
		Timeout:  5 * time.Second,
		CacheTTL: 60 * time.Second,
	}, stores.Jobs, stores.Applications, rdb.Client, log)

	jobs := jc.NewHandler(&jc.Config{Timeout: 10 * time.Second, Location: loc}, stores.Jobs, resumes, stats, log)

	submissions := sa.NewHandler(&sa.Config{
		Timeout:           30 * time.Second,
		AllowedExtensions: cfg.Storage.AllowedExtensions,
		MaxResumeBytes:    cfg.Storage.MaxResumeBytes,
	}, stores.Jobs, stores.Applications, resumes, stats, log)

	lister := la.NewHandler(&la.Config{Timeout: 15 * time.Second, Location: loc}, stores.Applications, log)
	exporter := ea.NewHandler(&ea.Config{
		Timeout:          60 * time.Second,
		IncludeCreatedAt: cfg.Export.IncludeCreatedAt,
		SheetName:        cfg.Export.SheetName,
		Location:         loc,
	}, lister, artifacts, obs, log)

	// --- Elasticsearch (optional) ---
	var search api.SearchService
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		indexer := ia.NewHandler(&ia.Config{Index: cfg.Database.Elasticsearch.Index, Timeout: 5 * time.Second}, esClient.Client, log)
		if err := indexer.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("search index setup failed", zap.Error(err))
		}
		submissions.AddListener(indexer)
		jobs.AddDeletionListener(indexer)

		search = sra.NewHandler(&sra.Config{
			Index:       cfg.Database.Elasticsearch.Index,
			Timeout:     5 * time.Second,
			DefaultSize: 50,
			MaxSize:     200,
		}, esClient.Client, log)
	}

	// --- Notifications (optional) ---
	if cfg.Notifications.Enabled() {
		clients, err := awsclients.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws client init failed", zap.Error(err))
		}
		notifyCfg := &sn.Config{
			EmailEnabled:    cfg.Notifications.Email.Enabled,
			SMSEnabled:      cfg.Notifications.SMS.Enabled,
			NotifyApplicant: cfg.Notifications.Email.NotifyApplicant,
			FromEmail:       cfg.Notifications.Email.FromEmail,
			HRRecipients:    cfg.Notifications.Email.HRRecipients,
			TopicARN:        cfg.Notifications.SMS.TopicARN,
			Timeout:         config.GetDuration(cfg.Notifications.Timeout),
		}
		if err := notifyCfg.Validate(); err != nil {
			zapLog.Fatal("invalid notification config", zap.Error(err))
		}
		submissions.AddListener(sn.NewHandler(notifyCfg, clients.SES, clients.SNS, log))
		zapLog.Info("Notifications enabled", zap.String("region", clients.Region))
	}

	// --- HTTP API ---
	router := api.NewRouter(&api.Config{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		CookieName:     cfg.Auth.CookieName,
		CookieSecure:   cfg.Auth.CookieSecure,
		SessionTTL:     sessions.TTL(),
		MaxBodyBytes:   cfg.Storage.MaxResumeBytes + 2<<20,
	}, api.Services{
		Jobs:        jobs,
		Submissions: submissions,
		Listing:     lister,
		Export:      exporter,
		Search:      search,
		Resumes:     resumes,
		Login:       al.NewHandler(nil, stores.Admins, sessions, log),
		Logout:      alo.NewHandler(nil, sessions, log),
		Stats:       stats,
		Sessions:    sessions,
		Validator:   validator,
	}, obs, log)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	opsServer := newOpsServer(cfg.HTTP.MetricsPort, readinessChecks{
		"postgres": pg.Ping,
		"redis":    rdb.Ping,
	})

	serveErr := make(chan error, 2)
	for _, srv := range []*http.Server{apiServer, opsServer} {
		go func(srv *http.Server) {
			zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("%s: %w", srv.Addr, err)
			}
		}(srv)
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serveErr:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{apiServer, opsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Warn("HTTP server shutdown incomplete", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	zapLog.Info("Server stopped")
}

type adminSeeder interface {
	Exists(ctx context.Context, email string) (bool, error)
	Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error)
}

// seedAdmin creates the configured bootstrap admin when it does not exist yet.
// An existing account is never overwritten.
func seedAdmin(ctx context.Context, admins adminSeeder, cfg config.AuthConfig, log logger.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	exists, err := admins.Exists(ctx, cfg.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if cfg.AdminPassword == "" {
		log.Warn("admin account missing and no admin_password configured", map[string]interface{}{"email": cfg.AdminEmail})
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if _, err := admins.Upsert(ctx, cfg.AdminEmail, hash); err != nil {
		return err
	}
	log.Info("admin account seeded", map[string]interface{}{"email": cfg.AdminEmail})
	return nil
}
