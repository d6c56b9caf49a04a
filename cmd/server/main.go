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

	"log/slog"

	"lunastudios/internal/auth"
	"lunastudios/internal/config"
	"lunastudios/internal/domain"
	"lunastudios/internal/email"
	"lunastudios/internal/httpapi"
	"lunastudios/internal/service"
	"lunastudios/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	if cfg.DBDSN == "" {
		logger.Error("APP_DB_DSN is required")
		os.Exit(1)
	}

	pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
	if err != nil {
		logger.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	users := postgres.NewUsersStore(pgPool)
	resets := postgres.NewPasswordResetStore(pgPool)
	sessions := postgres.NewPhotoSessionsStore(pgPool)
	payments := postgres.NewPaymentsStore(pgPool)
	packages := postgres.NewPackagesStore(pgPool)
	deliveries := postgres.NewDeliveriesStore(pgPool)
	notifications := postgres.NewNotificationsStore(pgPool)
	activity := postgres.NewActivityStore(pgPool)
	reports := postgres.NewReportsStore(pgPool)
	sysConfig := postgres.NewSystemConfigStore(pgPool)

	if err := bootstrapAdminUser(context.Background(), logger, users, cfg.AdminBootstrapEmail, cfg.AdminBootstrapName, cfg.AdminBootstrapPassword); err != nil {
		logger.Error("bootstrap admin failed", "err", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	dispatcher := &service.Dispatcher{Logger: logger}
	mailer := &service.SMTPMailer{
		Settings: email.Settings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			TLSMode:  cfg.SMTPTLSMode,
		},
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	}

	authSvc := &service.AuthService{
		Users:        users,
		Resets:       resets,
		Tokens:       tokens,
		Mailer:       mailer,
		Activity:     activity,
		Dispatch:     dispatcher,
		ResetBaseURL: cfg.ResetBaseURL,
	}
	profileSvc := &service.ProfileService{
		Users:    users,
		Activity: activity,
		Dispatch: dispatcher,
	}
	sessionSvc := &service.SessionService{
		Sessions:      sessions,
		Users:         users,
		Notifications: notifications,
		Activity:      activity,
		Mailer:        mailer,
		Dispatch:      dispatcher,
	}
	paymentSvc := &service.PaymentService{
		Payments:      payments,
		Sessions:      sessions,
		Users:         users,
		Notifications: notifications,
		Activity:      activity,
		Mailer:        mailer,
		Dispatch:      dispatcher,
	}
	packageSvc := &service.PackageService{
		Packages:    packages,
		Users:       users,
		Activity:    activity,
		Mailer:      mailer,
		Dispatch:    dispatcher,
		StudioEmail: cfg.StudioEmail,
	}
	deliverySvc := &service.DeliveryService{
		Deliveries:    deliveries,
		Sessions:      sessions,
		Users:         users,
		Notifications: notifications,
		Activity:      activity,
		Mailer:        mailer,
		Dispatch:      dispatcher,
	}
	notifSvc := &service.NotificationService{Notifications: notifications}
	adminSvc := &service.AdminService{
		Users:         users,
		Config:        sysConfig,
		Reports:       reports,
		Sessions:      sessions,
		Notifications: notifications,
		Activity:      activity,
		Mailer:        mailer,
		Dispatch:      dispatcher,
		Logger:        logger,
	}
	reportSvc := &service.ReportService{Store: reports}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		DBPing:         pgPool.Ping,
		Tokens:         tokens,
		Users:          users,
		Dispatch:       dispatcher,
		Auth:           authSvc,
		Profile:        profileSvc,
		Sessions:       sessionSvc,
		Payments:       paymentSvc,
		Packages:       packageSvc,
		Deliveries:     deliverySvc,
		Notifications:  notifSvc,
		Admin:          adminSvc,
		Reports:        reportSvc,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      cfg.UploadDir,
		UploadMaxBytes: cfg.UploadMaxBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		// Let in-flight mail and audit writes finish before the pool closes.
		dispatcher.Wait()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func bootstrapAdminUser(ctx context.Context, logger *slog.Logger, users *postgres.UsersStore, emailAddr, name, password string) error {
	if password == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(password) < 12 {
		return errors.New("APP_ADMIN_BOOTSTRAP_PASSWORD: must be at least 12 characters")
	}
	if emailAddr == "" {
		return errors.New("admin bootstrap: email is required")
	}

	_, err := users.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		logger.Info("admin bootstrap: user already exists", "email", emailAddr)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("admin bootstrap: lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("admin bootstrap: hash password: %w", err)
	}

	_, err = users.CreateUser(ctx, emailAddr, name, hash, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Info("admin bootstrap: user already exists", "email", emailAddr)
			return nil
		}
		return fmt.Errorf("admin bootstrap: create user: %w", err)
	}

	logger.Info("admin bootstrap: created admin user", "email", emailAddr)
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
