package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/radieske/reedz-platform/internal/scoring"
)

// Postgres implementa operações de persistência de bets e predictions
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de bets
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound         = errors.New("bet not found")
	ErrAlreadyClosed    = errors.New("bet already closed")
	ErrNotClosed        = errors.New("bet must be closed before resolving")
	ErrAlreadyResolved  = errors.New("bet already resolved")
	ErrBetClosed        = errors.New("bet is closed; cannot place prediction")
	ErrAlreadyPredicted = errors.New("user has already placed a prediction on this bet")
)

const betColumns = `id, created_by, title, description, answer_type, created_at, close_at,
	is_closed, is_resolved, resolved_number, resolved_text, resolve_at, rewards_distributed`

// Create insere uma nova bet aberta
func (p *Postgres) Create(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, created_by, title, description, answer_type, close_at, is_closed, is_resolved, rewards_distributed)
		VALUES ($1,$2,$3,$4,$5,$6,FALSE,FALSE,FALSE)`,
		id, b.CreatedBy, b.Title, b.Description, b.AnswerType, b.CloseAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get retorna uma bet pelo id
func (p *Postgres) Get(ctx context.Context, betID string) (*Bet, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, betID)
	b, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// List retorna bets por estado: "open", "closed" ou "resolved"
func (p *Postgres) List(ctx context.Context, status string) ([]Bet, error) {
	var where string
	switch status {
	case "open":
		where = `NOT is_closed`
	case "closed":
		where = `is_closed AND NOT is_resolved`
	case "resolved":
		where = `is_resolved`
	default:
		where = `TRUE`
	}

	rows, err := p.db.QueryContext(ctx, `SELECT `+betColumns+` FROM bets WHERE `+where+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Close marca a bet como fechada (CAS: falha se já estiver fechada)
func (p *Postgres) Close(ctx context.Context, betID string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE bets SET is_closed=TRUE, close_at=NOW() WHERE id=$1 AND NOT is_closed`, betID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := p.Get(ctx, betID); gerr != nil {
			return gerr
		}
		return ErrAlreadyClosed
	}
	return nil
}

// Resolve grava a resposta correta (CAS: exige fechada e não resolvida).
// A coluna preenchida segue o tipo da resposta.
func (p *Postgres) Resolve(ctx context.Context, betID string, answer scoring.Answer) error {
	var num sql.NullInt64
	var txt sql.NullString
	if answer.Type == scoring.AnswerNumber {
		num = sql.NullInt64{Int64: answer.Number, Valid: true}
	} else {
		txt = sql.NullString{String: answer.Text, Valid: true}
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET is_resolved=TRUE, resolved_number=$2, resolved_text=$3, resolve_at=NOW()
		WHERE id=$1 AND is_closed AND NOT is_resolved`,
		betID, num, txt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		b, gerr := p.Get(ctx, betID)
		if gerr != nil {
			return gerr
		}
		if b.IsResolved {
			return ErrAlreadyResolved
		}
		return ErrNotClosed
	}
	return nil
}

// InsertPrediction grava o palpite de um usuário, garantindo em transação
// que a bet ainda está aberta e que o usuário ainda não palpitou.
func (p *Postgres) InsertPrediction(ctx context.Context, pred *Prediction) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var closed bool
	err = tx.QueryRowContext(ctx, `SELECT is_closed FROM bets WHERE id=$1 FOR UPDATE`, pred.BetID).Scan(&closed)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}
	if closed {
		return "", ErrBetClosed
	}

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM predictions WHERE bet_id=$1 AND user_id=$2`,
		pred.BetID, pred.UserID).Scan(&exists)
	if err == nil {
		return "", ErrAlreadyPredicted
	} else if err != sql.ErrNoRows {
		return "", err
	}

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO predictions (id, bet_id, user_id, number, text_value)
		VALUES ($1,$2,$3,$4,$5)`,
		id, pred.BetID, pred.UserID, pred.Number, pred.TextValue); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListPredictions retorna todos os palpites de uma bet
func (p *Postgres) ListPredictions(ctx context.Context, betID string) ([]Prediction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, bet_id, user_id, number, text_value, created_at
		FROM predictions WHERE bet_id=$1 ORDER BY created_at`, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		var pr Prediction
		if err := rows.Scan(&pr.ID, &pr.BetID, &pr.UserID, &pr.Number, &pr.TextValue, &pr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBet(r rowScanner) (*Bet, error) {
	var b Bet
	err := r.Scan(&b.ID, &b.CreatedBy, &b.Title, &b.Description, &b.AnswerType,
		&b.CreatedAt, &b.CloseAt, &b.IsClosed, &b.IsResolved,
		&b.ResolvedNumber, &b.ResolvedText, &b.ResolveAt, &b.RewardsDistributed)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
