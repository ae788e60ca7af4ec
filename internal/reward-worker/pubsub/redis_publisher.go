package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/reedz-platform/pkg/contracts/events"
)

const ChannelReedzBroadcast = "reedz_updates_broadcast"

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload do broadcast de saldo pro front (leaderboard ao vivo)
type ReedzUpdate struct {
	BetID  string             `json:"betId"`
	Awards []events.UserAward `json:"awards"`
}
