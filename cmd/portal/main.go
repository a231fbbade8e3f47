package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/recruitment-portal/internal/application"
	"github.com/example/recruitment-portal/internal/config"
	httptransport "github.com/example/recruitment-portal/internal/http"
	"github.com/example/recruitment-portal/internal/logging"
	"github.com/example/recruitment-portal/internal/mail"
	"github.com/example/recruitment-portal/internal/observability/tracing"
	"github.com/example/recruitment-portal/internal/persistence"
	"github.com/example/recruitment-portal/internal/persistence/redisstore"
	"github.com/example/recruitment-portal/internal/persistence/sqlite"
)

const serviceName = "recruitment-portal"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(out, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	shutdownTracing, err := tracing.Init(ctx, logger, cfg.OTLPEndpoint, serviceName, version)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	app, err := newPortal(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr, "version", version, "session_store", cfg.SessionStore)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// portal is the fully wired HTTP surface plus the resources it owns.
type portal struct {
	Handler http.Handler
	closers []func() error
	logger  *slog.Logger
}

func (p *portal) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			p.logger.Error("failed to release resource", "error", err)
		}
	}
}

func newPortal(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *portal, err error) {
	p := &portal{logger: logger}
	defer func() {
		if err != nil {
			p.Close()
		}
	}()

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	p.closers = append(p.closers, storage.Close)

	if err := storage.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	hasher, err := application.NewPasswordHasher(application.HashAlgorithm(cfg.PasswordHash))
	if err != nil {
		return nil, err
	}
	if err := seedAdmin(ctx, storage, hasher, cfg, logger); err != nil {
		return nil, err
	}

	var sessions persistence.SessionRepository = storage
	health := storage.Ping
	if cfg.SessionStore == config.SessionStoreRedis {
		store, err := redisstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		p.closers = append(p.closers, store.Close)
		sessions = store
		health = func(ctx context.Context) error {
			if err := storage.Ping(ctx); err != nil {
				return err
			}
			return store.Ping(ctx)
		}
	}

	now := time.Now
	auth := application.NewAuthServiceWithLogger(application.AuthDependencies{
		Users:      storage,
		Sessions:   sessions,
		Activities: storage,
		Hasher:     hasher,
		Mailer:     newResetMailer(cfg, logger),
		Now:        now,
	}, application.AuthSettings{
		SessionTTL:    cfg.SessionTTL,
		IdleTimeout:   cfg.SessionIdleTimeout,
		ResetTokenTTL: cfg.ResetTokenTTL,
	}, logger)

	accounts := application.NewAccountServiceWithLogger(application.AccountDependencies{
		Users:          storage,
		Applications:   storage,
		Interviews:     storage,
		Screening:      storage,
		Documents:      storage,
		Now:            now,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)
	applications := application.NewApplicationServiceWithLogger(application.ApplicationDependencies{
		Applications:   storage,
		Activities:     storage,
		Now:            now,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)
	documents := application.NewDocumentServiceWithLogger(storage, storage, now, cfg.MaxUploadBytes, logger)
	messages := application.NewMessageServiceWithLogger(storage, storage, now, logger)
	editRequests := application.NewEditRequestServiceWithLogger(storage, storage, now, logger)
	screening := application.NewScreeningServiceWithLogger(storage, storage, storage, now, logger)
	interviews := application.NewInterviewServiceWithLogger(storage, storage, storage, now, logger)
	positions := application.NewPositionServiceWithLogger(storage, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(auth, httptransport.AuthHandlerOptions{ConcealResetEnumeration: cfg.ConcealResetEnumeration}, logger),
		Accounts:     httptransport.NewAccountHandler(accounts, logger),
		Applications: httptransport.NewApplicationHandler(applications, cfg.MaxUploadBytes, logger),
		Documents:    httptransport.NewDocumentHandler(documents, cfg.MaxUploadBytes, logger),
		Messages:     httptransport.NewMessageHandler(messages, logger),
		EditRequests: httptransport.NewEditRequestHandler(editRequests, logger),
		Screening:    httptransport.NewScreeningHandler(screening, logger),
		Interviews:   httptransport.NewInterviewHandler(interviews, logger),
		Positions:    httptransport.NewPositionHandler(positions, logger),
		Dashboard:    httptransport.NewDashboardHandler(application.NewDashboardService(storage, storage, now), application.NewSettingsService(storage), logger),
		Sessions:     auth,
		Health:       health,
		Logger:       logger,
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	p.Handler = otelhttp.NewHandler(router, serviceName)
	return p, nil
}

func seedAdmin(ctx context.Context, storage *sqlite.Storage, hasher *application.PasswordHasher, cfg config.Config, logger *slog.Logger) error {
	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := storage.EnsureAdmin(ctx, sqlite.AdminSeed{
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		FirstName:    "Portal",
		LastName:     "Administrator",
		Now:          time.Now(),
	})
	if err != nil {
		return fmt.Errorf("seed administrator: %w", err)
	}
	if created {
		logger.Warn("default administrator created; the password must be changed at first sign-in", "email", cfg.AdminEmail)
	}
	return nil
}

func newResetMailer(cfg config.Config, logger *slog.Logger) application.ResetMailer {
	if cfg.SMTPAddr == "" {
		return mail.LogSender{PublicURL: cfg.PublicURL, Logger: logger}
	}
	return mail.SMTPSender{
		Addr:      cfg.SMTPAddr,
		Username:  cfg.SMTPUser,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPFrom,
		PublicURL: cfg.PublicURL,
	}
}
