package http

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/radieske/reedz-platform/internal/shared/auth"
	"github.com/radieske/reedz-platform/internal/user-service/dto"
	"github.com/radieske/reedz-platform/internal/user-service/repo"
)

const leaderboardTTL = 30 * time.Second
const leaderboardLimit = 100

// Repo define a interface de operações de usuário usadas pelos handlers
type Repo interface {
	Create(ctx context.Context, u *repo.User) (string, error)
	GetByUsername(ctx context.Context, username string) (*repo.User, error)
	GetByEmail(ctx context.Context, email string) (*repo.User, error)
	List(ctx context.Context) ([]repo.User, error)
	Leaderboard(ctx context.Context, limit int) ([]repo.User, error)
	UpdateRole(ctx context.Context, userID, role string) error
	SetReedz(ctx context.Context, userID string, reedz int64) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, userID string) error
}

// Mailer envia o código de reset por e-mail
type Mailer interface {
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

// ResetCodes guarda e valida códigos de reset (TTL de 15 min)
type ResetCodes interface {
	Store(ctx context.Context, email, code string) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

// LeaderboardCache evita bater no Postgres a cada consulta de ranking
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context, dst any) (bool, error)
	SetLeaderboard(ctx context.Context, v any, ttl time.Duration) error
}

// Server expõe a API HTTP de usuários, auth e leaderboard
type Server struct {
	log       *zap.Logger
	repo      Repo
	mailer    Mailer
	codes     ResetCodes
	lb        LeaderboardCache
	jwtSecret string
	adminCode string
}

func NewServer(log *zap.Logger, r Repo, m Mailer, c ResetCodes, lb LeaderboardCache, jwtSecret, adminCode string) *Server {
	return &Server{log: log, repo: r, mailer: m, codes: c, lb: lb, jwtSecret: jwtSecret, adminCode: adminCode}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// rotas públicas
	r.Post("/users/register", s.register)
	r.Post("/users/login", s.login)
	r.Post("/users/password-reset/request", s.passwordResetRequest)
	r.Post("/users/password-reset/confirm", s.passwordResetConfirm)

	// rotas autenticadas
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.jwtSecret))
		r.Get("/leaderboard", s.leaderboard)
		r.Get("/users", s.listUsers)                   // admin
		r.Put("/users/{id}/role", s.updateRole)        // admin
		r.Put("/users/{id}/reedz", s.updateReedz)      // admin
		r.Delete("/users/{id}", s.deleteUser)          // admin
	})
	return r
}

// register cria um usuário; role Admin exige o código de verificação
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	role := req.Role
	if role == "" {
		role = auth.RoleMember
	}
	switch role {
	case auth.RoleMember:
	case auth.RoleAdmin:
		if s.adminCode == "" || req.AdminCode != s.adminCode {
			http.Error(w, "incorrect admin code", http.StatusForbidden)
			return
		}
	default:
		http.Error(w, "role must be 'Admin' or 'Member'", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to process password", http.StatusInternalServerError)
		return
	}

	userID, err := s.repo.Create(r.Context(), &repo.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserResponse{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
		Role:     role,
	})
}

// login valida credenciais e emite o JWT de sessão
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	u, err := s.repo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		// mesma resposta pra usuário inexistente e senha errada
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(s.jwtSecret, u.ID, u.Username, u.Role)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:    token,
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Reedz:    u.Reedz,
	})
}

// leaderboard retorna o ranking por reedz (cache Redis, fallback Postgres)
func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	var cached []dto.LeaderboardEntry
	if ok, _ := s.lb.GetLeaderboard(r.Context(), &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	users, err := s.repo.Leaderboard(r.Context(), leaderboardLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		out = append(out, dto.LeaderboardEntry{Username: u.Username, Reedz: u.Reedz})
	}

	_ = s.lb.SetLeaderboard(r.Context(), out, leaderboardTTL)
	writeJSON(w, http.StatusOK, out)
}

// listUsers lista todas as contas (painel admin)
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	users, err := s.repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserResponse{
			UserID:    u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			Reedz:     u.Reedz,
			CreatedAt: u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// updateRole promove/rebaixa um usuário (admin)
func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Role != auth.RoleAdmin && req.Role != auth.RoleMember {
		http.Error(w, "role must be 'Admin' or 'Member'", http.StatusBadRequest)
		return
	}

	if err := s.repo.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role); err != nil {
		s.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// updateReedz define o saldo absoluto de um usuário (admin)
func (s *Server) updateReedz(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var req dto.UpdateReedzRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Reedz < 0 {
		http.Error(w, "reedz must be >= 0", http.StatusBadRequest)
		return
	}

	if err := s.repo.SetReedz(r.Context(), chi.URLParam(r, "id"), req.Reedz); err != nil {
		s.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// deleteUser apaga a conta de um usuário (admin)
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// passwordResetRequest gera o código, guarda no Redis (15 min) e envia por e-mail
func (s *Server) passwordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if _, err := s.repo.GetByEmail(r.Context(), req.Email); err != nil {
		s.writeRepoError(w, err)
		return
	}

	code, err := newResetCode()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.codes.Store(r.Context(), req.Email, code); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.mailer.SendPasswordResetCode(r.Context(), req.Email, code); err != nil {
		s.log.Error("send reset code", zap.Error(err))
		http.Error(w, "failed to send email", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// passwordResetConfirm valida o código e troca a senha
func (s *Server) passwordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	u, err := s.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	ok, err := s.codes.Consume(r.Context(), req.Email, req.Code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "invalid or expired code", http.StatusForbidden)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to process password", http.StatusInternalServerError)
		return
	}
	if err := s.repo.UpdatePassword(r.Context(), u.ID, string(hash)); err != nil {
		s.writeRepoError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// writeRepoError traduz erros sentinela do repositório pra status HTTP
func (s *Server) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrUsernameTaken), errors.Is(err, repo.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// newResetCode gera um código de 6 dígitos
func newResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
