package repo

import "time"

// User é o modelo persistido no Postgres.
// reedz é o saldo de pontos acumulado pelas predictions.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string // "Admin" | "Member"
	Reedz        int64
	CreatedAt    time.Time
}
