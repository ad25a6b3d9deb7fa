package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/St1cky1/task-portal/internal/api"
	grpcapi "github.com/St1cky1/task-portal/internal/api/grpc"
	"github.com/St1cky1/task-portal/internal/config"
	"github.com/St1cky1/task-portal/internal/events"
	"github.com/St1cky1/task-portal/internal/infrastructure/auth"
	"github.com/St1cky1/task-portal/internal/infrastructure/client"
	"github.com/St1cky1/task-portal/internal/infrastructure/logger"
	"github.com/St1cky1/task-portal/internal/infrastructure/mail"
	"github.com/St1cky1/task-portal/internal/repository"
	"github.com/St1cky1/task-portal/internal/usecase"
	"github.com/St1cky1/task-portal/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConfig := client.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
	}

	// Запускаем миграции
	if err := runMigrations(cfg.DB.MigrationsPath, dbConfig.URL(), log); err != nil {
		return err
	}

	// Подключаемся к БД
	pg, err := client.NewPostgresClient(ctx, dbConfig)
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Info("connected to postgres", slog.String("host", cfg.DB.Host))

	// Подключаемся к RabbitMQ
	rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL, log)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()
	log.Info("connected to rabbitmq")

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	userCache, err := repository.NewUserCache(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer userCache.Close()

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(pg.Pool)
	taskRepo := repository.NewTaskRepository(pg.Pool)
	subtaskRepo := repository.NewSubtaskRepository(pg.Pool)
	commentRepo := repository.NewCommentRepository(pg.Pool)
	notificationRepo := repository.NewNotificationRepository(pg.Pool)
	taskAuditRepo := repository.NewTaskAuditRepository(pg.Pool)

	identity, err := newIdentityProvider(ctx, cfg.Auth, repository.NewCredentialRepository(pg.Pool))
	if err != nil {
		return err
	}
	log.Info("identity provider ready", slog.String("provider", cfg.Auth.Provider))

	// Инициализируем сервисы
	bus := events.NewBus(log)

	directory := usecase.NewUserDirectory(userRepo, userCache, cfg.Cache.TTL, log)
	rollup := usecase.NewStatusRollup(taskRepo, subtaskRepo, bus, rabbitMQ, log)
	notificationService := usecase.NewNotificationService(notificationRepo, userRepo, rabbitMQ, bus, log, cfg.HTTP.AppURL)
	taskService := usecase.NewTaskService(taskRepo, userRepo, rabbitMQ, bus, log)
	subtaskService := usecase.NewSubtaskService(taskRepo, subtaskRepo, rollup, bus, log)
	commentService := usecase.NewCommentService(taskRepo, commentRepo, directory, notificationService, bus, log)
	userService := usecase.NewUserService(userRepo, identity, directory, log)
	authService := usecase.NewAuthService(userRepo, identity, rabbitMQ, log)

	mailer := mail.NewMailer(mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Timeout:  cfg.SMTP.Timeout,
	}), cfg.SMTP.From)

	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	// Запускаем воркеры аудита и писем
	auditWorker := worker.NewAuditWorker(rabbitMQ, taskAuditRepo, log.With(slog.String("worker", "audit")))
	emailWorker := worker.NewEmailWorker(rabbitMQ, mailer, log.With(slog.String("worker", "email")))
	goRun(func() { auditWorker.Start(ctx) })
	goRun(func() { emailWorker.Start(ctx) })

	// Запускаем gRPC сервер (health + reflection)
	grpcServer := grpcapi.NewGRPCServer(pg, cfg.GRPC.HealthEvery, log)
	goRun(func() { grpcServer.WatchHealth(ctx) })
	goRun(func() {
		if err := grpcServer.Start(cfg.GRPC.Addr); err != nil {
			log.Error("grpc server error", slog.Any("err", err))
			stop()
		}
	})

	// Запускаем gRPC Gateway (HTTP->gRPC трансляция)
	gatewayHandler, gatewayConn, err := grpcapi.NewGatewayHandler(cfg.GRPC.Addr)
	if err != nil {
		return err
	}
	defer gatewayConn.Close()
	gatewayServer := newHTTPServer(ctx, cfg.GRPC.GatewayAddr, gatewayHandler)

	router := api.NewRouter(api.Services{
		Auth:          authService,
		Users:         userService,
		Tasks:         taskService,
		Subtasks:      subtaskService,
		Comments:      commentService,
		Notifications: notificationService,
		Bus:           bus,
	}, cfg.HTTP.AllowedOrigins, log)
	httpServer := newHTTPServer(ctx, cfg.HTTP.Addr, router)

	for _, srv := range []*http.Server{httpServer, gatewayServer} {
		srv := srv
		goRun(func() {
			log.Info("http server listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server error", slog.String("addr", srv.Addr), slog.Any("err", err))
				stop()
			}
		})
	}

	// Ждем сигнал завершения
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{httpServer, gatewayServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", slog.String("addr", srv.Addr), slog.Any("err", err))
		}
	}
	grpcServer.Stop()

	wg.Wait()
	log.Info("server stopped")
	return nil
}

// newHTTPServer - контексты запросов наследуются от ctx: Shutdown не отменяет
// активные запросы, а SSE стримы завершаются только вместе с контекстом
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func newIdentityProvider(ctx context.Context, cfg config.AuthConfig, creds repository.ICredentialRepository) (usecase.IdentityProvider, error) {
	switch cfg.Provider {
	case "local":
		tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)
		if err != nil {
			return nil, err
		}
		return auth.NewLocalProvider(creds, auth.NewPasswordManager(), tokens, cfg.ResetURL), nil
	case "firebase":
		return auth.NewFirebaseProvider(ctx, cfg.FirebaseCredentials)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}

func runMigrations(source, dbURL string, log *slog.Logger) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("migrations applied", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}
