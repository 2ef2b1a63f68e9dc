package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc/reflection"

	grpcctx "github.com/dtroode/reelscore-server/internal/api/grpc/context"
	"github.com/dtroode/reelscore-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/reelscore-server/internal/api/grpc/server"
	"github.com/dtroode/reelscore-server/internal/config"
	"github.com/dtroode/reelscore-server/internal/hasher"
	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/mail"
	"github.com/dtroode/reelscore-server/internal/metrics"
	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/internal/queue"
	"github.com/dtroode/reelscore-server/internal/repository/postgres"
	"github.com/dtroode/reelscore-server/internal/server"
	"github.com/dtroode/reelscore-server/internal/service"
	"github.com/dtroode/reelscore-server/internal/storage/redis"
	"github.com/dtroode/reelscore-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const (
	shutdownTimeout    = 10 * time.Second
	verificationPrefix = "verify:"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logAppVersion()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	verificationCache, err := redis.NewClient(ctx, redisClient, verificationPrefix)
	if err != nil {
		logger.Fatal("failed to initialize verification cache", "error", err)
	}

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("reelscore-server"))
	if err != nil {
		logger.Fatal("failed to connect to NATS", "error", err)
	}
	defer nc.Drain() //nolint:errcheck

	js, err := jetstream.New(nc)
	if err != nil {
		logger.Fatal("failed to create JetStream context", "error", err)
	}
	if err := queue.EnsureStream(ctx, js, cfg.NATS.Stream, cfg.NATS.Subject); err != nil {
		logger.Fatal("failed to ensure mail stream", "error", err)
	}
	dispatcher := queue.NewDispatcher(js, cfg.NATS.Subject)

	tokenIssuer, err := token.NewJWT(cfg.JWT.Secret)
	if err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}
	passwordHasher := hasher.NewBcrypt(cfg.Hash.Cost)

	sessionService := service.NewSession(
		userRepo,
		refreshTokenRepo,
		verificationCache,
		dispatcher,
		passwordHasher,
		tokenIssuer,
		logger,
	)
	profileService := service.NewProfile(userRepo, passwordHasher, logger)

	housekeeping := service.NewHousekeeping(userRepo, refreshTokenRepo, logger)
	if err := housekeeping.Start(cfg.Housekeeping.Schedule); err != nil {
		logger.Fatal("failed to schedule housekeeping", "error", err)
	}

	mailSender := mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	mailProcessor := mail.NewProcessor(mailSender, cfg.Mail.AppURL, cfg.Mail.From, logger)
	mailWorker := queue.NewWorker(js, cfg.NATS.Stream, cfg.NATS.Subject, cfg.NATS.Consumer, mailProcessor, logger)
	if err := mailWorker.Start(ctx); err != nil {
		logger.Fatal("failed to start mail worker", "error", err)
	}

	metricsServer := metrics.NewServer(cfg.Metrics.Addr, readiness(db, redisClient), logger)
	metricsErrs, err := metricsServer.Start()
	if err != nil {
		logger.Fatal("failed to start metrics server", "error", err)
	}

	ctxMgr := grpcctx.NewManager()
	r := router.New(sessionService, profileService, tokenIssuer, metricsServer.Metrics(), ctxMgr, logger)
	gs := r.Register()
	reflection.Register(gs)

	grpcSrv := grpcServer.NewGRPCServer(gs, fmt.Sprintf(":%s", cfg.GRPC.Port), logger)

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(grpcSrv)

	select {
	case <-ctx.Done():
		logger.Info("received interruption signal, shutting down")
	case err := <-metricsErrs:
		logger.Error("metrics server failed, shutting down", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", grpcSrv.Address())
	}
	wg.Wait()

	mailWorker.Stop()
	housekeeping.Stop(shutdownCtx)

	if err := metricsServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during metrics server shutdown", "error", err)
	}

	logger.Info("shutdown complete")
}

// readiness reports ready only when both the database and the cache answer.
func readiness(db *postgres.Connection, rc *goredis.Client) metrics.ReadinessChecker {
	return func(ctx context.Context) error {
		return errors.Join(db.Ping(ctx), rc.Ping(ctx).Err())
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
