package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("admin privileges required")
)

// Identity é o usuário autenticado extraído do token.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// GenerateToken emite um JWT HS256 com validade de 24h.
func GenerateToken(secret, userID, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"userId":   userID,
		"username": username,
		"role":     role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken valida o token e devolve a identidade do usuário.
func ParseToken(secret, tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{}
	id.UserID, _ = claims["userId"].(string)
	id.Username, _ = claims["username"].(string)
	id.Role, _ = claims["role"].(string)
	if id.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

type ctxKey struct{}

// FromContext recupera a identidade colocada pelo Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware exige um bearer token válido e injeta a identidade no contexto.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}

			id, err := ParseToken(secret, header[len("Bearer "):])
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		})
	}
}

// RequireAdmin retorna a identidade do contexto, falhando se não for admin.
func RequireAdmin(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if !id.IsAdmin() {
		return Identity{}, ErrForbidden
	}
	return id, nil
}
