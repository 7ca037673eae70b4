package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portal/internal/config"
	"portal/internal/handler"
	"portal/internal/infra/db"
	"portal/internal/infra/notify"
	infraRepo "portal/internal/infra/repository"
	"portal/internal/server"
	"portal/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	//通知（Redisが無ければ送らない）
	var notifier usecase.Notifier = notify.NopNotifier{}
	if cfg.RedisAddr != "" {
		client, err := notify.NewRedisClient(context.Background(), notify.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		notifier = notify.NewRedisNotifier(client, cfg.NotifyChannel, logger)
	} else {
		logger.Warn("REDIS_ADDR is empty; notifications are disabled")
	}

	//usecaseに渡す部品
	txm := infraRepo.NewTxManagerGorm(gormDB)
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//Usecase生成
	offerUC := usecase.NewOfferUsecase(txm, notifier, idGen, clock, logger)
	applicationUC := usecase.NewApplicationUsecase(txm, notifier, idGen, clock, logger)
	confirmationUC := usecase.NewConfirmationUsecase(txm, idGen, clock, logger)
	auditUC := usecase.NewAuditUsecase(txm, logger)

	//Handler生成
	offerH := handler.NewOfferHandler(offerUC, applicationUC)
	orderH := handler.NewOrderHandler(applicationUC, confirmationUC)
	auditH := handler.NewAuditHandler(auditUC)

	srv := server.New(cfg, logger, offerH, orderH, auditH)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func initLogger(cfg config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapCfg.Level = level

	l, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("env", cfg.GoEnv)), nil
}
