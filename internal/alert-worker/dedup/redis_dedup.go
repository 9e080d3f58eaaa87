package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// Deduper suprime alertas repetidos para a mesma proposta na mesma casa
// dentro da janela de TTL, via SETNX no Redis. A chave inclui a linha:
// a mesma proposta com point diferente alerta de novo.
type Deduper struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(c *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{Client: c, TTL: ttl}
}

// FirstSeen retorna true quando esta é a primeira ocorrência da proposta
// dentro da janela; ocorrências subsequentes retornam false até o TTL.
func (d *Deduper) FirstSeen(ctx context.Context, o events.OpportunityFound) (bool, error) {
	return d.Client.SetNX(ctx, key(o), 1, d.TTL).Result()
}

func key(o events.OpportunityFound) string {
	point := ""
	if o.Point != nil {
		point = fmt.Sprintf("%v", *o.Point)
	}
	return fmt.Sprintf("ev:alert:%s|%s|%s|%s|%s|%s",
		o.EventID, o.Market, o.Selection, point, o.PlayerName, o.Venue)
}
