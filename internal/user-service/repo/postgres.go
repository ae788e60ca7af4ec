package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de usuários em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
)

const userColumns = `id, username, email, password_hash, role, reedz, created_at`

// Create insere um novo usuário, garantindo unicidade de username e email
func (p *Postgres) Create(ctx context.Context, u *User) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, u.Username).Scan(&exists)
	if err == nil {
		return "", ErrUsernameTaken
	} else if err != sql.ErrNoRows {
		return "", err
	}

	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email=$1`, u.Email).Scan(&exists)
	if err == nil {
		return "", ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return "", err
	}

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, reedz)
		VALUES ($1,$2,$3,$4,$5,0)`,
		id, u.Username, u.Email, u.PasswordHash, u.Role); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) GetByUsername(ctx context.Context, username string) (*User, error) {
	return p.getBy(ctx, `username=$1`, username)
}

func (p *Postgres) GetByEmail(ctx context.Context, email string) (*User, error) {
	return p.getBy(ctx, `email=$1`, email)
}

func (p *Postgres) GetByID(ctx context.Context, id string) (*User, error) {
	return p.getBy(ctx, `id=$1`, id)
}

func (p *Postgres) getBy(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Reedz, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

// List retorna todos os usuários (painel de administração)
func (p *Postgres) List(ctx context.Context) ([]User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Reedz, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Leaderboard retorna os usuários ordenados por reedz
func (p *Postgres) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY reedz DESC, username LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Reedz, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRole promove/rebaixa um usuário
func (p *Postgres) UpdateRole(ctx context.Context, userID, role string) error {
	return p.exec(ctx, `UPDATE users SET role=$1 WHERE id=$2`, role, userID)
}

// SetReedz define o saldo absoluto de um usuário (ação administrativa,
// diferente do incremento aditivo feito pelo reward-worker)
func (p *Postgres) SetReedz(ctx context.Context, userID string, reedz int64) error {
	return p.exec(ctx, `UPDATE users SET reedz=$1 WHERE id=$2`, reedz, userID)
}

// UpdatePassword troca o hash de senha de um usuário
func (p *Postgres) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return p.exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
}

// Delete remove a conta de um usuário
func (p *Postgres) Delete(ctx context.Context, userID string) error {
	return p.exec(ctx, `DELETE FROM users WHERE id=$1`, userID)
}

func (p *Postgres) exec(ctx context.Context, q string, args ...any) error {
	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
