package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis
// Pub/Sub com os ciclos publicados pelo scan-worker e os repassa para
// todos os clientes WebSocket conectados via Hub.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var cycle events.LiveCycle
				if err := json.Unmarshal([]byte(msg.Payload), &cycle); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(cycle)
			}
		}
	}()
}
