package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PubSubNotificador publishes ledger-change notifications over Redis pub/sub.
// The payload carries no data: subscribers reload the full result set, so a
// dropped message only delays freshness until the next one.
type PubSubNotificador struct {
	rdb *redis.Client
}

func NewPubSubNotificador(rdb *redis.Client) *PubSubNotificador {
	return &PubSubNotificador{rdb: rdb}
}

func (n *PubSubNotificador) Publicar(ctx context.Context, canal string) {
	if err := n.rdb.Publish(ctx, canal, "1").Err(); err != nil {
		log.Warn().Err(err).Str("canal", canal).Msg("notificador: publish failed")
	}
}
