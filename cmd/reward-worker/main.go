package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/reedz-platform/internal/reward-worker/consumer"
	"github.com/radieske/reedz-platform/internal/reward-worker/distributor"
	"github.com/radieske/reedz-platform/internal/reward-worker/pubsub"
	wrepo "github.com/radieske/reedz-platform/internal/reward-worker/repo"
	sharedcache "github.com/radieske/reedz-platform/internal/shared/cache"
	"github.com/radieske/reedz-platform/internal/shared/config"
	"github.com/radieske/reedz-platform/internal/shared/db"
	sharedkafka "github.com/radieske/reedz-platform/internal/shared/kafka"
	"github.com/radieske/reedz-platform/internal/shared/logger"
	"github.com/radieske/reedz-platform/internal/shared/metrics"
	ucache "github.com/radieske/reedz-platform/internal/user-service/cache"
	"github.com/radieske/reedz-platform/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("reward-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres (bets, predictions, ledger e saldos)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (broadcast de saldos pro leaderboard ao vivo)
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka: consome bet_resolved, publica rewards_distributed (+ DLQ)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetResolved, "reward-worker")
	defer reader.Close()

	rewardsWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRewardsDistributed)
	defer rewardsWriter.Close()

	dlqWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetResolvedDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus por estágio do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "reward_worker_messages_consumed_total", Help: "eventos bet_resolved consumidos"})
	distributed := prometheus.NewCounter(prometheus.CounterOpts{Name: "reward_worker_bets_distributed_total", Help: "bets com distribuição concluída"})
	awarded := prometheus.NewCounter(prometheus.CounterOpts{Name: "reward_worker_reedz_awarded_total", Help: "reedz creditados no total"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "reward_worker_skipped_total", Help: "distribuições puladas por motivo"}, []string{"reason"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "reward_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, distributed, awarded, skipped, errorsBy)

	broadcaster := pubsub.NewRedisBroadcaster(rdb)
	leaderboard := ucache.New(rdb)

	dist := &distributor.Distributor{
		Log:       log,
		Store:     wrepo.NewPostgres(pg),
		OnSkipped: func(reason string) { skipped.WithLabelValues(reason).Inc() },
	}

	proc := &consumer.Processor{
		Log:           log,
		Reader:        reader,
		Dist:          dist,
		RewardsWriter: rewardsWriter,
		DLQWriter:     dlqWriter,
		OnConsumed:    func() { consumed.Inc() },
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após distribuir, derruba o cache do leaderboard e manda os
		// novos saldos pro canal de broadcast
		OnDistributed: func(ev events.RewardsDistributed) {
			distributed.Inc()
			awarded.Add(float64(ev.TotalReedz))

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := leaderboard.Invalidate(ctx); err != nil {
				log.Warn("leaderboard invalidate failed", zap.Error(err))
			}

			b, _ := json.Marshal(pubsub.ReedzUpdate{BetID: ev.BetID, Awards: ev.Awards})
			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("reedz broadcast publish failed", zap.Error(err))
			}
		},
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("reward-worker started",
		zap.String("consume", cfg.TopicBetResolved),
		zap.String("publish", cfg.TopicRewardsDistributed),
	)

	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor", zap.Error(err))
	}
	log.Info("reward-worker stopped")
}
