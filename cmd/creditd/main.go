package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/infrastructure/config"
	"github.com/bibbank/credit-service/internal/infrastructure/kafka"
	"github.com/bibbank/credit-service/internal/infrastructure/messaging"
	pgRepo "github.com/bibbank/credit-service/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/credit-service/internal/infrastructure/scheduler"
	grpcPresentation "github.com/bibbank/credit-service/internal/presentation/grpc"
	"github.com/bibbank/credit-service/internal/presentation/rest"
	"github.com/bibbank/credit-service/migrations"
	pkgkafka "github.com/bibbank/credit-service/pkg/kafka"
	"github.com/bibbank/credit-service/pkg/observability"
	pkgpostgres "github.com/bibbank/credit-service/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("credit-service exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting credit-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort

	metrics, err := usecase.NewMetrics(meterProvider.Meter("github.com/bibbank/credit-service"))
	if err != nil {
		return fmt.Errorf("init use-case metrics: %w", err)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(cfg.DB.DSN(), migrations.FS, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Infrastructure adapters.
	creditRepo := pgRepo.NewCreditRepo(pool)
	installmentRepo := pgRepo.NewInstallmentRepo(pool)
	loanRepo := pgRepo.NewLoanRepo(pool)
	paymentRepo := pgRepo.NewPaymentRepo(pool)
	historyRepo := pgRepo.NewLoanHistoryRepo(pool)

	var publisher port.EventPublisher
	if cfg.Kafka.Enabled() {
		producer, err := pkgkafka.NewProducer(cfg.Kafka.Config)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }() //nolint:errcheck // flushes on close
		publisher = kafka.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, kafka.DefaultRetryPolicy, logger)
		logger.Info("publishing events to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	} else {
		publisher = messaging.NewLogEventPublisher(logger)
		logger.Warn("KAFKA_BROKERS not set, events are only logged")
	}

	clock := port.SystemClock

	// Use cases.
	useCases := grpcPresentation.UseCases{
		CreateCredit:          usecase.NewCreateCreditUseCase(creditRepo, publisher, clock, metrics, logger),
		SimulateSchedule:      usecase.NewSimulateScheduleUseCase(metrics),
		GetCredit:             usecase.NewGetCreditUseCase(creditRepo),
		ListClientCredits:     usecase.NewListClientCreditsUseCase(creditRepo),
		ListInstallments:      usecase.NewListInstallmentsUseCase(installmentRepo),
		GetInstallmentBalance: usecase.NewGetInstallmentBalanceUseCase(installmentRepo, clock),
		PayInstallment:        usecase.NewPayInstallmentUseCase(creditRepo, installmentRepo, publisher, clock, metrics, logger),
		ListCreditPayments:    usecase.NewListCreditPaymentsUseCase(paymentRepo),
		CancelCredit:          usecase.NewCancelCreditUseCase(creditRepo, publisher, clock, logger),
		CreateLoan:            usecase.NewCreateLoanUseCase(loanRepo, publisher, clock, logger),
		DecideLoan:            usecase.NewDecideLoanUseCase(loanRepo, publisher, clock, logger),
		PayLoan:               usecase.NewPayLoanUseCase(loanRepo, publisher, clock, metrics, logger),
		GetLoan:               usecase.NewGetLoanUseCase(loanRepo),
		ListClientLoans:       usecase.NewListClientLoansUseCase(loanRepo),
		ListLoanPayments:      usecase.NewListLoanPaymentsUseCase(paymentRepo),
		GetLoanHistory:        usecase.NewGetLoanHistoryUseCase(historyRepo),
	}
	sweepUC := usecase.NewSweepOverdueUseCase(creditRepo, installmentRepo, loanRepo, publisher, clock, metrics, logger)

	// Overdue sweep.
	sched := scheduler.New(logger, 5*time.Minute)
	if cfg.OverdueSchedule != "" {
		if err := sched.ScheduleSweep(cfg.OverdueSchedule, sweepUC); err != nil {
			return err
		}
		sched.Start()
	}

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.NewCreditHandler(useCases), grpcPresentation.ServerConfig{
		HealthName: cfg.ServiceName,
		CertFile:   cfg.GRPC.CertFile,
		KeyFile:    cfg.GRPC.KeyFile,
		Reflection: cfg.GRPC.Reflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, pool, metricsHandler, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("credit-service stopped")
	return runErr
}
