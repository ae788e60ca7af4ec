package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/reedz-platform/internal/bet-service/dto"
	"github.com/radieske/reedz-platform/internal/bet-service/repo"
	"github.com/radieske/reedz-platform/internal/scoring"
	"github.com/radieske/reedz-platform/internal/shared/auth"
	"github.com/radieske/reedz-platform/pkg/contracts/events"
)

// Repo define as operações de persistência usadas pelos handlers HTTP
type Repo interface {
	Create(ctx context.Context, b *repo.Bet) (string, error)
	Get(ctx context.Context, betID string) (*repo.Bet, error)
	List(ctx context.Context, status string) ([]repo.Bet, error)
	Close(ctx context.Context, betID string) error
	Resolve(ctx context.Context, betID string, answer scoring.Answer) error
	InsertPrediction(ctx context.Context, pred *repo.Prediction) (string, error)
	ListPredictions(ctx context.Context, betID string) ([]repo.Prediction, error)
}

// Publisher publica eventos de resolução pro reward-worker
type Publisher interface {
	PublishBetResolved(ctx context.Context, e events.BetResolved) error
}

// Server expõe a API HTTP de bets e predictions
type Server struct {
	log       *zap.Logger
	repo      Repo
	publ      Publisher
	jwtSecret string
}

func NewServer(log *zap.Logger, r Repo, p Publisher, jwtSecret string) *Server {
	return &Server{log: log, repo: r, publ: p, jwtSecret: jwtSecret}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware(s.jwtSecret))

	r.Route("/bets", func(r chi.Router) {
		r.Post("/", s.createBet)  // admin
		r.Get("/", s.listBets)    // ?status=open|closed|resolved
		r.Get("/{id}", s.getBet)
		r.Post("/{id}/close", s.closeBet)     // admin
		r.Post("/{id}/resolve", s.resolveBet) // admin
		r.Post("/{id}/predictions", s.placePrediction)
		r.Get("/{id}/predictions", s.listPredictions)
	})
	return r
}

// createBet cria uma nova proposição (somente admin)
func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAdmin(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	answerType, terr := scoring.ParseAnswerType(req.AnswerType)
	if req.Title == "" || terr != nil || req.CloseAt.IsZero() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	betID, err := s.repo.Create(r.Context(), &repo.Bet{
		CreatedBy:   id.UserID,
		Title:       req.Title,
		Description: req.Description,
		AnswerType:  string(answerType),
		CloseAt:     req.CloseAt,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateBetResponse{BetID: betID, Status: "OPEN"})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.repo.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for i := range bets {
		out = append(out, betResponse(&bets[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, betResponse(b))
}

// closeBet fecha a bet pra novos palpites (somente admin)
func (s *Server) closeBet(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if err := s.repo.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "CLOSED"})
}

// resolveBet grava a resposta correta e publica bet_resolved (somente admin).
// A distribuição de reedz acontece no reward-worker, uma única vez por bet.
func (s *Server) resolveBet(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAdmin(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	betID := chi.URLParam(r, "id")
	var req dto.ResolveBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	b, err := s.repo.Get(r.Context(), betID)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	answer, err := scoring.ParseAnswer(scoring.AnswerType(b.AnswerType), req.Answer)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.repo.Resolve(r.Context(), betID, answer); err != nil {
		s.writeRepoError(w, err)
		return
	}

	ev := events.BetResolved{
		BetID:        betID,
		AnswerType:   b.AnswerType,
		ResolvedText: answer.Text,
		ResolvedBy:   id.UserID,
	}
	if answer.Type == scoring.AnswerNumber {
		n := answer.Number
		ev.ResolvedNumber = &n
	}
	if err := s.publ.PublishBetResolved(r.Context(), ev); err != nil {
		// a bet já está resolvida; sem o evento o worker não distribui
		s.log.Error("publish bet_resolved", zap.String("betId", betID), zap.Error(err))
		http.Error(w, "resolved but event publish failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "RESOLVED"})
}

// placePrediction registra o palpite do usuário autenticado
func (s *Server) placePrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	betID := chi.URLParam(r, "id")
	var req dto.PlacePredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	b, err := s.repo.Get(r.Context(), betID)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	// coerção de tipo acontece aqui, na submissão; o scoring assume
	// palpites já bem tipados
	value, err := scoring.ParseAnswer(scoring.AnswerType(b.AnswerType), req.Value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pred := &repo.Prediction{BetID: betID, UserID: id.UserID}
	if value.Type == scoring.AnswerNumber {
		pred.Number.Int64, pred.Number.Valid = value.Number, true
	} else {
		pred.TextValue.String, pred.TextValue.Valid = value.Text, true
	}

	predID, err := s.repo.InsertPrediction(r.Context(), pred)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PredictionResponse{
		PredictionID: predID,
		BetID:        betID,
		UserID:       id.UserID,
		Value:        value.String(),
	})
}

func (s *Server) listPredictions(w http.ResponseWriter, r *http.Request) {
	betID := chi.URLParam(r, "id")
	preds, err := s.repo.ListPredictions(r.Context(), betID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.PredictionResponse, 0, len(preds))
	for _, p := range preds {
		out = append(out, dto.PredictionResponse{
			PredictionID: p.ID,
			BetID:        p.BetID,
			UserID:       p.UserID,
			Value:        predictionValue(p),
			CreatedAt:    p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// writeRepoError traduz erros sentinela do repositório pra status HTTP
func (s *Server) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrAlreadyClosed),
		errors.Is(err, repo.ErrNotClosed),
		errors.Is(err, repo.ErrAlreadyResolved),
		errors.Is(err, repo.ErrBetClosed),
		errors.Is(err, repo.ErrAlreadyPredicted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func betResponse(b *repo.Bet) dto.BetResponse {
	out := dto.BetResponse{
		BetID:       b.ID,
		CreatedBy:   b.CreatedBy,
		Title:       b.Title,
		Description: b.Description,
		AnswerType:  b.AnswerType,
		Status:      b.Status(),
		CreatedAt:   b.CreatedAt,
		CloseAt:     b.CloseAt,
	}
	if b.IsResolved {
		if b.ResolvedNumber.Valid {
			out.ResolvedAnswer = strconv.FormatInt(b.ResolvedNumber.Int64, 10)
		} else {
			out.ResolvedAnswer = b.ResolvedText.String
		}
	}
	if b.ResolveAt.Valid {
		t := b.ResolveAt.Time
		out.ResolveAt = &t
	}
	return out
}

func predictionValue(p repo.Prediction) string {
	if p.Number.Valid {
		return strconv.FormatInt(p.Number.Int64, 10)
	}
	return p.TextValue.String
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
