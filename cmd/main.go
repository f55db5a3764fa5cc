package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/data"
	"github.com/payout-hq/payout/data/cache"
	"github.com/payout-hq/payout/data/repository"
	"github.com/payout-hq/payout/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/payout-hq/payout/internal/externalApi/fmpApi"
	"github.com/payout-hq/payout/internal/notifier/telegramNotifier"
	"github.com/payout-hq/payout/internal/reportGenerator/xlsxGenerator"
	"github.com/payout-hq/payout/internal/scheduler"
	"github.com/payout-hq/payout/internal/service/batchService"
	"github.com/payout-hq/payout/internal/service/stockService"
	"github.com/payout-hq/payout/internal/transport/httpapi"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := repository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	fmpClient := fmpApi.New(cfg)

	var notifier batchService.Notifier
	if cfg.Telegram.Enabled {
		notifier = telegramNotifier.New(cfg)
	}

	reportGenerator := xlsxGenerator.New()

	var cloudStorage batchService.CloudStorage
	if cfg.GoogleDrive.Enabled {
		cloudStorage = googleDriveApi.New(ctx, cfg)
	}

	batchSrv := batchService.New(cfg, pgRepo, redisCache, fmpClient, notifier, reportGenerator, cloudStorage)
	stockSrv := stockService.New(cfg, pgRepo, redisCache)

	sched := scheduler.New()
	sched.NewCrontabJob("update stocks", batchSrv.UpdateStocks, cfg.Jobs.UpdateStocksCrontab, false)
	sched.NewCrontabJob("update dividends", batchSrv.UpdateDividends, cfg.Jobs.UpdateDividendsCrontab, false)
	if cfg.GoogleDrive.Enabled {
		sched.NewCrontabJob(
			"dividend report",
			func(ctx context.Context) error {
				_, err := batchSrv.GenerateDividendReport(ctx)
				return err
			},
			cfg.Jobs.DividendReportCrontab,
			false,
		)
	}
	sched.Start()
	defer sched.Stop()

	controller := httpapi.NewController(stockSrv)
	server := httpapi.NewServer(cfg, httpapi.NewRouter(controller))
	server.Start()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	if err := server.Shutdown(context.Background()); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
