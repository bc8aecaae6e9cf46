package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"folioplan/internal/cache"
	"folioplan/internal/clients/fmp"
	"folioplan/internal/clients/newsapi"
	"folioplan/internal/config"
	"folioplan/internal/database"
	"folioplan/internal/modules/history"
	"folioplan/internal/modules/planning"
	"folioplan/internal/modules/portfolio"
	"folioplan/internal/modules/sentiment"
	"folioplan/internal/modules/strategy"
	"folioplan/internal/reliability"
	"folioplan/internal/scheduler"
	"folioplan/internal/server"
	"folioplan/pkg/logger"
)

// Cron schedules (with seconds field).
const (
	snapshotSchedule     = "0 0 22 * * *" // daily, after US market close
	cacheCleanupSchedule = "@hourly"
	backupSchedule       = "0 30 2 * * *" // daily, during market quiet hours
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't up yet; stderr is all we have.
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting folioplan")

	// Databases
	portfolioDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "portfolio.db"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{portfolioDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	if cfg.FMPAPIKey == "" {
		log.Warn().Msg("FMP_API_KEY not set, price lookups will fail")
	}
	if cfg.NewsAPIKey == "" {
		log.Warn().Msg("NEWS_API_KEY not set, news sentiment will be unavailable")
	}

	// Upstream clients
	cacheRepo := cache.NewRepository(cacheDB.Conn())
	fmpClient := fmp.NewClient(cfg.FMPAPIKey, cfg.FMPBaseURL, cacheRepo, log)
	newsClient := newsapi.NewClient(cfg.NewsAPIKey, cfg.NewsBaseURL, cacheRepo, log)

	// Services
	portfolioRepo := portfolio.NewRepository(portfolioDB.Conn())
	portfolioSvc := portfolio.NewService(portfolioRepo, fmpClient, log)

	strategyRepo := strategy.NewRepository(portfolioDB.Conn())

	historySvc := history.NewService(history.NewRepository(portfolioDB.Conn()), portfolioSvc, log)
	portfolioSvc.SetSnapshotter(historySvc)

	planningSvc := planning.NewService(portfolioRepo, strategyRepo, priceAdapter{client: fmpClient}, log)
	sentimentSvc := sentiment.NewService(newsClient, portfolioRepo, log)

	// Background jobs
	sched := scheduler.New(log)
	mustAddJob(log, sched, snapshotSchedule, scheduler.NewSnapshotJob(historySvc))
	mustAddJob(log, sched, cacheCleanupSchedule, scheduler.NewCacheCleanupJob(cacheRepo, log))

	if cfg.Backup.Enabled() {
		s3Client, err := reliability.NewS3Client(
			cfg.Backup.Endpoint,
			cfg.Backup.Region,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 client")
		}

		backupSvc := reliability.NewBackupService(
			s3Client,
			[]reliability.Database{portfolioDB, cacheDB},
			cfg.DataDir,
			cfg.Backup.Keep,
			log,
		)
		mustAddJob(log, sched, backupSchedule, scheduler.NewBackupJob(backupSvc))
	} else {
		log.Info().Msg("Offsite backups disabled, no S3 credentials configured")
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		PortfolioDB: portfolioDB,
		CacheDB:     cacheDB,

		PortfolioHandler: portfolio.NewHandler(portfolioSvc, log),
		StrategyHandler:  strategy.NewHandler(strategyRepo, portfolioRepo, log),
		PlanningHandler:  planning.NewHandler(planningSvc, log),
		HistoryHandler:   history.NewHandler(historySvc, log),
		SentimentHandler: sentiment.NewHandler(sentimentSvc, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func mustAddJob(log zerolog.Logger, sched *scheduler.Scheduler, schedule string, job scheduler.Job) {
	if err := sched.AddJob(schedule, job); err != nil {
		log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
	}
}

// priceAdapter bridges the FMP client to the planner's price interface.
type priceAdapter struct {
	client *fmp.Client
}

func (a priceAdapter) GetPriceData(tickers []string) (map[string]planning.PriceInfo, error) {
	data, err := a.client.GetPriceData(tickers)
	if err != nil {
		return nil, err
	}

	out := make(map[string]planning.PriceInfo, len(data))
	for ticker, d := range data {
		out[ticker] = planning.PriceInfo{
			Current:     d.Current,
			WeeklyHigh:  d.WeeklyHigh,
			MonthlyHigh: d.MonthlyHigh,
			YearlyHigh:  d.YearlyHigh,
		}
	}

	return out, nil
}
