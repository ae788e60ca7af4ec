package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	sharedcache "github.com/radieske/reedz-platform/internal/shared/cache"
	"github.com/radieske/reedz-platform/internal/shared/config"
	"github.com/radieske/reedz-platform/internal/shared/db"
	"github.com/radieske/reedz-platform/internal/shared/logger"
	"github.com/radieske/reedz-platform/internal/shared/metrics"
	ucache "github.com/radieske/reedz-platform/internal/user-service/cache"
	uhttp "github.com/radieske/reedz-platform/internal/user-service/http"
	"github.com/radieske/reedz-platform/internal/user-service/mailer"
	urepo "github.com/radieske/reedz-platform/internal/user-service/repo"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("user-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres (usuários e saldos)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de leaderboard e códigos de reset)
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	repository := urepo.NewPostgres(pg)
	sg := mailer.New(cfg.SendGridKey, cfg.MailFrom)
	codes := ucache.NewResetCodes(rdb)
	lb := ucache.New(rdb)

	api := uhttp.NewServer(log, repository, sg, codes, lb, cfg.JWTSecret, cfg.AdminCode)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("user-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
