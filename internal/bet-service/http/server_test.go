package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/reedz-platform/internal/bet-service/repo"
	"github.com/radieske/reedz-platform/internal/scoring"
	"github.com/radieske/reedz-platform/internal/shared/auth"
	"github.com/radieske/reedz-platform/pkg/contracts/events"
)

const testSecret = "test-secret"

// fakeRepo guarda bets e predictions em memória, reproduzindo os erros
// sentinela do repositório real.
type fakeRepo struct {
	bets        map[string]*repo.Bet
	predictions map[string]map[string]repo.Prediction // betID -> userID -> pred
	nextID      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bets:        map[string]*repo.Bet{},
		predictions: map[string]map[string]repo.Prediction{},
	}
}

func (f *fakeRepo) Create(_ context.Context, b *repo.Bet) (string, error) {
	f.nextID++
	id := b.Title + "-id"
	nb := *b
	nb.ID = id
	nb.CreatedAt = time.Now()
	f.bets[id] = &nb
	return id, nil
}

func (f *fakeRepo) Get(_ context.Context, betID string) (*repo.Bet, error) {
	b, ok := f.bets[betID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ string) ([]repo.Bet, error) {
	var out []repo.Bet
	for _, b := range f.bets {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeRepo) Close(_ context.Context, betID string) error {
	b, ok := f.bets[betID]
	if !ok {
		return repo.ErrNotFound
	}
	if b.IsClosed {
		return repo.ErrAlreadyClosed
	}
	b.IsClosed = true
	return nil
}

func (f *fakeRepo) Resolve(_ context.Context, betID string, answer scoring.Answer) error {
	b, ok := f.bets[betID]
	if !ok {
		return repo.ErrNotFound
	}
	if !b.IsClosed {
		return repo.ErrNotClosed
	}
	if b.IsResolved {
		return repo.ErrAlreadyResolved
	}
	b.IsResolved = true
	if answer.Type == scoring.AnswerNumber {
		b.ResolvedNumber.Int64, b.ResolvedNumber.Valid = answer.Number, true
	} else {
		b.ResolvedText.String, b.ResolvedText.Valid = answer.Text, true
	}
	return nil
}

func (f *fakeRepo) InsertPrediction(_ context.Context, pred *repo.Prediction) (string, error) {
	b, ok := f.bets[pred.BetID]
	if !ok {
		return "", repo.ErrNotFound
	}
	if b.IsClosed {
		return "", repo.ErrBetClosed
	}
	if f.predictions[pred.BetID] == nil {
		f.predictions[pred.BetID] = map[string]repo.Prediction{}
	}
	if _, dup := f.predictions[pred.BetID][pred.UserID]; dup {
		return "", repo.ErrAlreadyPredicted
	}
	id := pred.BetID + "-" + pred.UserID
	pred.ID = id
	f.predictions[pred.BetID][pred.UserID] = *pred
	return id, nil
}

func (f *fakeRepo) ListPredictions(_ context.Context, betID string) ([]repo.Prediction, error) {
	var out []repo.Prediction
	for _, p := range f.predictions[betID] {
		out = append(out, p)
	}
	return out, nil
}

type fakePublisher struct {
	published []events.BetResolved
	fail      bool
}

func (f *fakePublisher) PublishBetResolved(_ context.Context, e events.BetResolved) error {
	if f.fail {
		return assert.AnError
	}
	f.published = append(f.published, e)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeRepo, *fakePublisher) {
	t.Helper()
	fr := newFakeRepo()
	fp := &fakePublisher{}
	return NewServer(zap.NewNop(), fr, fp, testSecret), fr, fp
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, "admin-1", "alice", auth.RoleAdmin)
	require.NoError(t, err)
	return token
}

func memberToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, "user-"+userID, auth.RoleMember)
	require.NoError(t, err)
	return token
}

func createNumberBet(t *testing.T, s *Server) string {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/bets", adminToken(t), map[string]any{
		"title":       "gols",
		"answer_type": "NUMBER",
		"close_at":    time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		BetID string `json:"betId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.BetID
}

func TestCreateBet(t *testing.T) {
	t.Run("admin cria bet", func(t *testing.T) {
		s, fr, _ := newTestServer(t)
		id := createNumberBet(t, s)
		assert.Contains(t, fr.bets, id)
		assert.Equal(t, "OPEN", fr.bets[id].Status())
	})

	t.Run("member nao pode criar", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/bets", memberToken(t, "u1"), map[string]any{
			"title":       "gols",
			"answer_type": "NUMBER",
			"close_at":    time.Now().Add(time.Hour),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("answer_type invalido", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/bets", adminToken(t), map[string]any{
			"title":       "gols",
			"answer_type": "BOOLEAN",
			"close_at":    time.Now().Add(time.Hour),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sem token", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := doRequest(t, s, http.MethodPost, "/bets", "", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPlacePrediction(t *testing.T) {
	t.Run("palpite valido", func(t *testing.T) {
		s, fr, _ := newTestServer(t)
		betID := createNumberBet(t, s)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/predictions", memberToken(t, "u1"),
			map[string]any{"value": "42"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		pred := fr.predictions[betID]["u1"]
		assert.True(t, pred.Number.Valid)
		assert.EqualValues(t, 42, pred.Number.Int64)
	})

	t.Run("valor nao numerico em bet NUMBER", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		betID := createNumberBet(t, s)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/predictions", memberToken(t, "u1"),
			map[string]any{"value": "muitos"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("palpite duplicado", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		betID := createNumberBet(t, s)

		first := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/predictions", memberToken(t, "u1"),
			map[string]any{"value": "1"})
		require.Equal(t, http.StatusCreated, first.Code)

		second := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/predictions", memberToken(t, "u1"),
			map[string]any{"value": "2"})
		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("bet fechada rejeita palpite", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		betID := createNumberBet(t, s)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, s, http.MethodPost, "/bets/"+betID+"/predictions", memberToken(t, "u1"),
			map[string]any{"value": "3"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCloseBet(t *testing.T) {
	s, _, _ := newTestServer(t)
	betID := createNumberBet(t, s)

	rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// fechar duas vezes é conflito
	rec = doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// member não fecha
	rec = doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", memberToken(t, "u1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResolveBet(t *testing.T) {
	t.Run("resolucao publica bet_resolved", func(t *testing.T) {
		s, fr, fp := newTestServer(t)
		betID := createNumberBet(t, s)
		doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/resolve", adminToken(t),
			map[string]any{"answer": "100"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.Len(t, fp.published, 1)
		ev := fp.published[0]
		assert.Equal(t, betID, ev.BetID)
		require.NotNil(t, ev.ResolvedNumber)
		assert.EqualValues(t, 100, *ev.ResolvedNumber)
		assert.True(t, fr.bets[betID].IsResolved)
	})

	t.Run("precisa estar fechada", func(t *testing.T) {
		s, _, fp := newTestServer(t)
		betID := createNumberBet(t, s)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/resolve", adminToken(t),
			map[string]any{"answer": "100"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Empty(t, fp.published)
	})

	t.Run("nao resolve duas vezes", func(t *testing.T) {
		s, _, fp := newTestServer(t)
		betID := createNumberBet(t, s)
		doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)
		doRequest(t, s, http.MethodPost, "/bets/"+betID+"/resolve", adminToken(t), map[string]any{"answer": "1"})

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/resolve", adminToken(t),
			map[string]any{"answer": "2"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Len(t, fp.published, 1)
	})

	t.Run("resposta nao numerica", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		betID := createNumberBet(t, s)
		doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/resolve", adminToken(t),
			map[string]any{"answer": "empate"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("member nao resolve", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		betID := createNumberBet(t, s)
		doRequest(t, s, http.MethodPost, "/bets/"+betID+"/close", adminToken(t), nil)

		rec := doRequest(t, s, http.MethodPost, "/bets/"+betID+"/resolve", memberToken(t, "u1"),
			map[string]any{"answer": "100"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
