package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	bhttp "github.com/radieske/reedz-platform/internal/bet-service/http"
	kpub "github.com/radieske/reedz-platform/internal/bet-service/producer"
	"github.com/radieske/reedz-platform/internal/bet-service/repo"
	"github.com/radieske/reedz-platform/internal/shared/config"
	"github.com/radieske/reedz-platform/internal/shared/db"
	sharedkafka "github.com/radieske/reedz-platform/internal/shared/kafka"
	"github.com/radieske/reedz-platform/internal/shared/logger"
	"github.com/radieske/reedz-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka writer (topic bet_resolved)
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetResolved)
	defer writer.Close()

	// deps
	repository := repo.NewPostgres(pg)
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetResolved)

	// HTTP público
	api := bhttp.NewServer(log, repository, publ, cfg.JWTSecret)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
