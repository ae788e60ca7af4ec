package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/radieske/reedz-platform/internal/reward-worker/distributor"
	"github.com/radieske/reedz-platform/internal/scoring"
)

var ErrNotFound = errors.New("bet not found")

// Postgres implementa distributor.Store sobre o banco da plataforma.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetBet carrega o estado da bet e monta a resposta etiquetada.
func (p *Postgres) GetBet(ctx context.Context, betID string) (*distributor.Bet, error) {
	var (
		answerType string
		num        sql.NullInt64
		txt        sql.NullString
		b          distributor.Bet
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, answer_type, is_closed, is_resolved, resolved_number, resolved_text, rewards_distributed
		FROM bets WHERE id=$1`, betID).
		Scan(&b.ID, &answerType, &b.IsClosed, &b.IsResolved, &num, &txt, &b.RewardsDistributed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	if scoring.AnswerType(answerType) == scoring.AnswerNumber {
		b.Resolved = scoring.NumberAnswer(num.Int64)
	} else {
		b.Resolved = scoring.TextAnswer(txt.String)
	}
	return &b, nil
}

// GetPredictions retorna o snapshot completo dos palpites da bet.
func (p *Postgres) GetPredictions(ctx context.Context, betID string) ([]scoring.Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT user_id, number, text_value FROM predictions WHERE bet_id=$1 ORDER BY created_at`, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.Entry
	for rows.Next() {
		var (
			uid string
			num sql.NullInt64
			txt sql.NullString
		)
		if err := rows.Scan(&uid, &num, &txt); err != nil {
			return nil, err
		}
		e := scoring.Entry{UserID: uid}
		if num.Valid {
			e.Value = scoring.NumberAnswer(num.Int64)
		} else {
			e.Value = scoring.TextAnswer(txt.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// IncrementReedz aplica um award de forma idempotente: o ledger tem
// UNIQUE(bet_id, user_id) e o saldo só é incrementado quando a linha do
// ledger é nova. Reaplicar o mesmo award é um no-op (applied=false).
func (p *Postgres) IncrementReedz(ctx context.Context, betID, userID string, points int) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reedz_ledger (bet_id, user_id, points)
		VALUES ($1,$2,$3)
		ON CONFLICT (bet_id, user_id) DO NOTHING`,
		betID, userID, points)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, tx.Commit() // award já aplicado numa invocação anterior
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET reedz = reedz + $1 WHERE id=$2`, points, userID); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// MarkDistributed liga a flag terminal de distribuição.
func (p *Postgres) MarkDistributed(ctx context.Context, betID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bets SET rewards_distributed=TRUE WHERE id=$1`, betID)
	return err
}
