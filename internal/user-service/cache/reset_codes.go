package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetCodeTTL é a validade do código enviado por e-mail.
const ResetCodeTTL = 15 * time.Minute

func keyResetCode(email string) string { return "pwreset:" + email }

// ResetCodes guarda códigos de reset de senha no Redis com TTL.
type ResetCodes struct{ R *redis.Client }

func NewResetCodes(r *redis.Client) *ResetCodes { return &ResetCodes{R: r} }

func (c *ResetCodes) Store(ctx context.Context, email, code string) error {
	return c.R.Set(ctx, keyResetCode(email), code, ResetCodeTTL).Err()
}

// Consume valida e queima o código: um código só serve uma vez.
func (c *ResetCodes) Consume(ctx context.Context, email, code string) (bool, error) {
	stored, err := c.R.GetDel(ctx, keyResetCode(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		// código errado não deve queimar o válido
		_ = c.R.Set(ctx, keyResetCode(email), stored, ResetCodeTTL).Err()
		return false, nil
	}
	return true, nil
}
