package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// Key única do conjunto "live" no Redis. Um SET substitui o ciclo anterior
// por inteiro de forma atômica; leitores nunca enxergam ciclo parcial.
const liveKey = "ev:live"

// Store encapsula o conjunto live de oportunidades no Redis
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewStore cria o store com TTL configurável (o live expira se o scan parar)
func NewStore(c *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: c, TTL: ttl}
}

// Replace grava o ciclo corrente, substituindo atomicamente o anterior
func (s *Store) Replace(ctx context.Context, cycle events.LiveCycle) error {
	b, err := json.Marshal(cycle)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, liveKey, b, s.TTL).Err()
}

// Get retorna o ciclo live corrente; ok=false quando não há ciclo gravado
func (s *Store) Get(ctx context.Context) (events.LiveCycle, bool, error) {
	var cycle events.LiveCycle

	b, err := s.Client.Get(ctx, liveKey).Bytes()
	if err == redis.Nil {
		return cycle, false, nil
	}
	if err != nil {
		return cycle, false, err
	}
	if err := json.Unmarshal(b, &cycle); err != nil {
		return cycle, false, err
	}
	return cycle, true, nil
}
