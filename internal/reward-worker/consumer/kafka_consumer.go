package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/reedz-platform/internal/reward-worker/distributor"
	sharedkafka "github.com/radieske/reedz-platform/internal/shared/kafka"
	"github.com/radieske/reedz-platform/pkg/contracts/events"
)

// Processor consome eventos bet_resolved, roda a distribuição de reedz e
// publica rewards_distributed. Callbacks de métricas por etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Dist   *distributor.Distributor

	RewardsWriter *kafka.Writer // topico rewards_distributed
	DLQWriter     *kafka.Writer // opcional

	OnConsumed    func()                            // métricas (counter++)
	OnDistributed func(ev events.RewardsDistributed) // métricas + broadcast
	OnError       func(stage string)                 // métricas por fase
}

// Run inicia o loop principal de consumo e processamento.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.BetResolved
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		if err := p.processOne(ctx, &ev); err != nil {
			p.Log.Error("distribute rewards", zap.String("betId", ev.BetID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("distribute")
			}
			if p.DLQWriter != nil {
				_ = sharedkafka.WriteJSON(ctx, p.DLQWriter, ev.BetID, m.Value)
			}
		}
	}
}

// processOne roda a distribuição com retry simples antes de desistir.
// Reprocessar é seguro: o ledger torna cada award idempotente.
func (p *Processor) processOne(ctx context.Context, ev *events.BetResolved) error {
	var (
		out *events.RewardsDistributed
		err error
	)
	const retries = 3
	for i := 0; i < retries; i++ {
		if out, err = p.Dist.Distribute(ctx, ev.BetID); err == nil {
			break
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	if err != nil {
		return err
	}
	if out == nil {
		return nil // já distribuída
	}

	if p.RewardsWriter != nil {
		b, _ := json.Marshal(out)
		if werr := sharedkafka.WriteJSON(ctx, p.RewardsWriter, out.BetID, b); werr != nil {
			p.Log.Warn("publish rewards_distributed", zap.Error(werr))
		}
	}

	if p.OnDistributed != nil {
		p.OnDistributed(*out)
	}
	return nil
}
