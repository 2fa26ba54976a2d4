package main

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/joewaltman/sidebet/internal/schedule"
	"github.com/joewaltman/sidebet/internal/schedule/espn"
	"github.com/joewaltman/sidebet/internal/schedule/oddsapi"
	"github.com/joewaltman/sidebet/internal/shared/config"
	"github.com/joewaltman/sidebet/internal/shared/db"
	"github.com/joewaltman/sidebet/internal/shared/kafka"
	"github.com/joewaltman/sidebet/internal/shared/logger"
	"github.com/joewaltman/sidebet/internal/shared/metrics"
	whttp "github.com/joewaltman/sidebet/internal/wager-service/http"
	"github.com/joewaltman/sidebet/internal/wager-service/ledger"
	"github.com/joewaltman/sidebet/internal/wager-service/producer"
	"github.com/joewaltman/sidebet/internal/wager-service/repo"
	"github.com/joewaltman/sidebet/internal/wager-service/settle"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Providers externos de jogos e spreads
	primary := espn.New(cfg.ESPNBaseURL)
	var secondary *oddsapi.Client
	if cfg.OddsAPIKey != "" {
		secondary = oddsapi.New(cfg.OddsAPIBaseURL, cfg.OddsAPIKey)
	} else {
		log.Warn("odds api key not configured; fallback spreads disabled")
	}
	games := schedule.NewService(log, primary, secondary, cfg.GamesCacheTTL)

	// deps
	store := repo.NewPostgres(pg)
	lg := ledger.NewService(log, store)
	engine := settle.NewEngine(log, store, games)

	// Kafka é opcional: sem brokers, eventos ficam desabilitados
	var publ whttp.Publisher
	if cfg.KafkaBrokers != "" {
		created := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerCreated)
		settled := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
		defer created.Close()
		defer settled.Close()
		publ = producer.NewKafkaPublisher(created, settled)
	}

	// HTTP público
	api := whttp.NewServer(log, games, lg, engine, publ, cfg.BaseURL)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("sidebet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
