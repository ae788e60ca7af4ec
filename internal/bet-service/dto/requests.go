package dto

import "time"

type CreateBetRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AnswerType  string    `json:"answer_type"` // "NUMBER" | "TEXT"
	CloseAt     time.Time `json:"close_at"`
}

type ResolveBetRequest struct {
	Answer string `json:"answer"` // interpretado conforme o answer_type da bet
}

type PlacePredictionRequest struct {
	Value string `json:"value"` // interpretado conforme o answer_type da bet
}
