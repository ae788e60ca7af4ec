package dto

import "time"

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Reedz     int64     `json:"reedz"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Reedz    int64  `json:"reedz"`
}

type LeaderboardEntry struct {
	Username string `json:"username"`
	Reedz    int64  `json:"reedz"`
}
