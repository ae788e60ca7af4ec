package events

// Evento emitido pelo bet-service quando um admin resolve uma bet.
// Exatamente um dos campos resolved_number/resolved_text é preenchido,
// conforme o answer_type da bet.
type BetResolved struct {
	BetID          string `json:"bet_id"`
	AnswerType     string `json:"answer_type"` // "NUMBER" | "TEXT"
	ResolvedNumber *int64 `json:"resolved_number,omitempty"`
	ResolvedText   string `json:"resolved_text,omitempty"`
	ResolvedBy     string `json:"resolved_by"`
	TsUnixMs       int64  `json:"ts_unix_ms"`
}
