package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventrsvp/config"
	_ "eventrsvp/docs"
	"eventrsvp/internal/adapters/auth"
	"eventrsvp/internal/adapters/broker"
	"eventrsvp/internal/adapters/email"
	deliveryhttp "eventrsvp/internal/delivery/http"
	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/domain"
	"eventrsvp/internal/repository/postgres"
	"eventrsvp/internal/services"
)

// @title Event RSVP API
// @version 1.0
// @description Capacity-constrained event reservations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBDriver, cfg.DBUrl, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	logger.Info("connected to database", "driver", cfg.DBDriver)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	notifiers := services.NotifierGroup{services.NewEmailNotifier(emailSvc)}

	if cfg.RabbitMQURL != "" {
		publisher, err := broker.NewPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		logger.Info("publishing reservation events", "exchange", broker.ExchangeName)
	}

	eventRepo := postgres.NewEventRepository(db)
	store := postgres.NewReservationStore(db, logger)
	reservationSvc := services.NewReservationService(store, notifiers, logger, cfg.ReservationTx)
	eventSvc := services.NewEventService(eventRepo, cfg.RequestTimeout)

	var verifier domain.TokenVerifier = auth.NewJWTVerifier(cfg.JWTSecret)
	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:       controllers.NewEventController(logger, eventSvc),
		Reservations: controllers.NewReservationController(logger, reservationSvc),
		Health:       controllers.NewHealthController(logger, db),
	}, verifier, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewHandler(mux, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
