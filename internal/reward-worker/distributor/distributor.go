// Package distributor orquestra a distribuição de reedz de uma bet
// resolvida: busca bet e palpites via Store, delega a matemática ao
// pacote scoring e aplica um incremento de saldo por usuário premiado.
package distributor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/reedz-platform/internal/scoring"
	"github.com/radieske/reedz-platform/pkg/contracts/events"
)

var (
	ErrBetNotClosed   = errors.New("bet must be closed before distribution")
	ErrBetNotResolved = errors.New("bet is not resolved")
)

// Bet é a visão mínima da bet resolvida que o distributor precisa.
type Bet struct {
	ID                 string
	IsClosed           bool
	IsResolved         bool
	RewardsDistributed bool
	Resolved           scoring.Answer
}

// Store abstrai a persistência pra manter o scoring testável sem banco.
// IncrementReedz devolve applied=false quando o award (bet_id, user_id)
// já tinha sido aplicado antes — é isso que torna o reprocessamento seguro.
type Store interface {
	GetBet(ctx context.Context, betID string) (*Bet, error)
	GetPredictions(ctx context.Context, betID string) ([]scoring.Entry, error)
	IncrementReedz(ctx context.Context, betID, userID string, points int) (applied bool, err error)
	MarkDistributed(ctx context.Context, betID string) error
}

// Distributor executa a orquestração uma vez por evento bet_resolved.
type Distributor struct {
	Log   *zap.Logger
	Store Store

	OnSkipped func(reason string) // métricas
}

// Distribute calcula e aplica as recompensas de uma bet resolvida.
// Retorna nil (sem erro) quando a bet já tinha sido distribuída.
// Conjunto vazio de palpites não é erro: marca a flag e encerra.
func (d *Distributor) Distribute(ctx context.Context, betID string) (*events.RewardsDistributed, error) {
	bet, err := d.Store.GetBet(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("get bet: %w", err)
	}
	if !bet.IsClosed {
		return nil, ErrBetNotClosed
	}
	if !bet.IsResolved {
		return nil, ErrBetNotResolved
	}
	if bet.RewardsDistributed {
		// fast-path; a idempotência real é por usuário, via ledger
		if d.OnSkipped != nil {
			d.OnSkipped("already_distributed")
		}
		d.Log.Info("rewards already distributed", zap.String("betId", betID))
		return nil, nil
	}

	preds, err := d.Store.GetPredictions(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("get predictions: %w", err)
	}

	out := &events.RewardsDistributed{BetID: betID, Participants: len(preds), Ts: time.Now()}
	if len(preds) == 0 {
		if err := d.Store.MarkDistributed(ctx, betID); err != nil {
			return nil, fmt.Errorf("mark distributed: %w", err)
		}
		return out, nil
	}

	awards := scoring.Distribute(bet.Resolved, preds)

	// ordem determinística de aplicação
	ids := make([]string, 0, len(awards))
	for uid := range awards {
		ids = append(ids, uid)
	}
	sort.Strings(ids)

	for _, uid := range ids {
		points := awards[uid]
		if points <= 0 {
			continue // awards zero não são emitidos
		}
		applied, err := d.Store.IncrementReedz(ctx, betID, uid, points)
		if err != nil {
			// distribuição parcial: incrementos já aplicados ficam;
			// reprocessar é seguro porque cada award é idempotente no ledger
			return nil, fmt.Errorf("increment reedz user=%s: %w", uid, err)
		}
		if !applied {
			continue
		}
		out.Awards = append(out.Awards, events.UserAward{UserID: uid, Reedz: points})
		out.TotalReedz += points
	}

	if err := d.Store.MarkDistributed(ctx, betID); err != nil {
		return nil, fmt.Errorf("mark distributed: %w", err)
	}
	return out, nil
}
