package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/reedz-platform/internal/shared/config"
	"github.com/radieske/reedz-platform/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New("api-gateway", cfg.Env)
	defer log.Sync()

	// targets
	userURL := os.Getenv("USER_URL")
	if userURL == "" {
		userURL = "http://localhost:8082"
	}
	betURL := os.Getenv("BET_URL")
	if betURL == "" {
		betURL = "http://localhost:8083"
	}
	user := rp(userURL)
	bet := rp(betURL)

	mux := http.NewServeMux()

	// bets (ex.: /api/bets/* -> bet-service)
	mux.Handle("/api/bets/", http.StripPrefix("/api", bet))
	mux.Handle("/api/bets", http.StripPrefix("/api", bet))

	// usuários e leaderboard (ex.: /api/users/* -> user-service)
	mux.Handle("/api/users/", http.StripPrefix("/api", user))
	mux.Handle("/api/users", http.StripPrefix("/api", user))
	mux.Handle("/api/leaderboard", http.StripPrefix("/api", user))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
