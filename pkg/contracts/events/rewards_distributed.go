package events

import "time"

// UserAward é a recompensa final de um participante (delta de reedz).
type UserAward struct {
	UserID string `json:"user_id"`
	Reedz  int    `json:"reedz"`
}

// Evento emitido pelo reward-worker após distribuir as recompensas de uma bet.
type RewardsDistributed struct {
	BetID        string      `json:"bet_id"`
	Participants int         `json:"participants"`
	TotalReedz   int         `json:"total_reedz"`
	Awards       []UserAward `json:"awards"`
	Ts           time.Time   `json:"ts"`
}
