package dto

import "time"

type BetResponse struct {
	BetID          string     `json:"betId"`
	CreatedBy      string     `json:"created_by"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AnswerType     string     `json:"answer_type"`
	Status         string     `json:"status"` // OPEN | CLOSED | RESOLVED | REWARDED
	CreatedAt      time.Time  `json:"created_at"`
	CloseAt        time.Time  `json:"close_at"`
	ResolvedAnswer string     `json:"resolved_answer,omitempty"`
	ResolveAt      *time.Time `json:"resolve_at,omitempty"`
}

type CreateBetResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
}

type PredictionResponse struct {
	PredictionID string    `json:"predictionId"`
	BetID        string    `json:"betId"`
	UserID       string    `json:"userId"`
	Value        string    `json:"value"`
	CreatedAt    time.Time `json:"created_at"`
}
