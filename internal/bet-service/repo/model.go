package repo

import (
	"database/sql"
	"time"
)

// Bet é a proposição persistida no Postgres.
// resolved_number/resolved_text seguem o answer_type: exatamente um
// é preenchido quando is_resolved = true.
type Bet struct {
	ID                 string
	CreatedBy          string
	Title              string
	Description        string
	AnswerType         string // "NUMBER" | "TEXT"
	CreatedAt          time.Time
	CloseAt            time.Time
	IsClosed           bool
	IsResolved         bool
	ResolvedNumber     sql.NullInt64
	ResolvedText       sql.NullString
	ResolveAt          sql.NullTime
	RewardsDistributed bool
}

// Status deriva o estado do ciclo de vida a partir das flags.
func (b *Bet) Status() string {
	switch {
	case b.RewardsDistributed:
		return "REWARDED"
	case b.IsResolved:
		return "RESOLVED"
	case b.IsClosed:
		return "CLOSED"
	default:
		return "OPEN"
	}
}

// Prediction é o palpite de um usuário, imutável depois de criado.
// No máximo um por (bet_id, user_id).
type Prediction struct {
	ID        string
	BetID     string
	UserID    string
	Number    sql.NullInt64
	TextValue sql.NullString
	CreatedAt time.Time
}
