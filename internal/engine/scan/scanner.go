package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/sports-ev-scanner/internal/engine/benchmark"
	"github.com/radieske/sports-ev-scanner/internal/engine/devig"
	"github.com/radieske/sports-ev-scanner/internal/engine/market"
	"github.com/radieske/sports-ev-scanner/internal/engine/odds"
)

// ErrScanInProgress é retornado quando um segundo ciclo tenta iniciar com
// outro ainda em andamento. Ciclos nunca se intercalam: o resultado "live"
// de um ciclo parcial misturado a outro não pode ficar visível.
var ErrScanInProgress = errors.New("scan cycle already in progress")

// RawQuote é uma linha de cotação como chega do coletor, ainda não validada.
// O preço pode vir em notação decimal ou americana, conforme Format.
type RawQuote struct {
	EventID    string
	Market     string
	Selection  string
	Point      *float64
	PlayerName string
	Venue      string
	Price      float64
	Format     odds.Format
	ObservedAt time.Time
}

// DroppedQuote registra o diagnóstico de uma cotação descartada na validação
type DroppedQuote struct {
	Venue     string
	EventID   string
	Market    string
	Selection string
	Reason    string
}

// Result é o produto completo de um ciclo de scan. Todas as oportunidades
// compartilham o mesmo CycleID; o conjunto "live" é definido como as
// oportunidades do ciclo mais recente: substituição atômica por filtro,
// sem limpar-e-reinserir.
type Result struct {
	CycleID       string
	StartedAt     time.Time
	FinishedAt    time.Time
	Opportunities []Opportunity  // todas as positivas acima do mínimo
	Dropped       []DroppedQuote // cotações inválidas, com diagnóstico
	QuotesSeen    int
	KeysScanned   int
	NoBenchmark   int // chaves sem benchmark resolvível neste ciclo
}

// Live retorna a visão condensada: a melhor casa por MatchKey
func (r Result) Live() []Opportunity {
	live := make([]Opportunity, 0, len(r.Opportunities))
	for _, o := range r.Opportunities {
		if o.Best {
			live = append(live, o)
		}
	}
	return live
}

// Scanner orquestra um ciclo de scan sobre um snapshot imutável de cotações.
// No máximo um ciclo em andamento por instância; chamadas concorrentes são
// rejeitadas com ErrScanInProgress.
type Scanner struct {
	mu sync.Mutex
}

func NewScanner() *Scanner { return &Scanner{} }

// Run valida o batch, agrupa por família (evento, mercado, linha, jogador),
// resolve o benchmark de cada chave e pontua as casas candidatas. O scoring
// por família é paralelo: nenhuma chave depende de outra. Uma cotação
// malformada nunca aborta o ciclo: ela é descartada com diagnóstico e o
// restante do batch segue. O resultado é total para o batch de entrada.
func (s *Scanner) Run(ctx context.Context, batch []RawQuote, cfg Config) (Result, error) {
	if !s.mu.TryLock() {
		return Result{}, ErrScanInProgress
	}
	defer s.mu.Unlock()

	res := Result{
		CycleID:    uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		QuotesSeen: len(batch),
	}

	quotes, dropped := validate(batch)
	res.Dropped = dropped

	families := make(map[market.FamilyKey][]market.Quote)
	for _, q := range quotes {
		fam := q.Key.Family()
		families[fam] = append(families[fam], q)
	}

	cache := devig.NewCache()

	var wg sync.WaitGroup
	outcomes := make(chan familyOutcome, len(families))

	for _, fam := range families {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		wg.Add(1)
		go func(familyQuotes []market.Quote) {
			defer wg.Done()
			outcomes <- scoreFamily(familyQuotes, cfg, cache)
		}(fam)
	}

	wg.Wait()
	close(outcomes)

	for out := range outcomes {
		res.Opportunities = append(res.Opportunities, out.opps...)
		res.KeysScanned += out.keysScanned
		res.NoBenchmark += out.noBenchmark
	}

	res.FinishedAt = time.Now().UTC()
	for i := range res.Opportunities {
		res.Opportunities[i].CycleID = res.CycleID
		res.Opportunities[i].FoundAt = res.FinishedAt
	}
	return res, nil
}

// familyOutcome acumula o resultado do scoring de uma família
type familyOutcome struct {
	opps        []Opportunity
	keysScanned int
	noBenchmark int
}

// scoreFamily resolve benchmark e pontua candidatos para cada MatchKey de
// uma família. Função pura sobre o snapshot, segura para rodar em paralelo.
func scoreFamily(familyQuotes []market.Quote, cfg Config, cache *devig.Cache) (out familyOutcome) {
	// Última cotação por (chave, casa); polls antigos não competem
	latest := make(map[string]map[market.Venue]market.Quote)
	for _, q := range familyQuotes {
		id := q.Key.ID()
		venues, ok := latest[id]
		if !ok {
			venues = make(map[market.Venue]market.Quote)
			latest[id] = venues
		}
		if prev, ok := venues[q.Venue]; !ok || q.ObservedAt.After(prev.ObservedAt) {
			venues[q.Venue] = q
		}
	}

	for _, venues := range latest {
		out.keysScanned++

		var key market.MatchKey
		for _, q := range venues {
			key = q.Key
			break
		}

		bench := benchmark.Select(key, familyQuotes, cfg.SharpVenue, cfg.MinConsensusVenues, cache)
		if bench == nil {
			out.noBenchmark++
			continue
		}

		// Conta casas independentes com EV positivo (fonte do benchmark excluída)
		positive := 0
		for _, q := range venues {
			if bench.SourceVenue != "" && q.Venue == bench.SourceVenue {
				continue
			}
			if EVPercent(q.Price, bench.FairProbability) > 0 {
				positive++
			}
		}

		var keyOpps []Opportunity
		bestIdx := -1
		for _, q := range venues {
			opp := Score(q, bench, cfg)
			if opp == nil {
				continue
			}
			opp.PositiveVenueCount = positive
			keyOpps = append(keyOpps, *opp)
			if bestIdx < 0 || opp.EVPercent > keyOpps[bestIdx].EVPercent {
				bestIdx = len(keyOpps) - 1
			}
		}
		if bestIdx >= 0 {
			keyOpps[bestIdx].Best = true
		}
		out.opps = append(out.opps, keyOpps...)
	}
	return out
}

// validate normaliza e valida cada linha do batch, separando as inválidas
// com diagnóstico individual.
func validate(batch []RawQuote) ([]market.Quote, []DroppedQuote) {
	quotes := make([]market.Quote, 0, len(batch))
	var dropped []DroppedQuote

	drop := func(r RawQuote, err error) {
		dropped = append(dropped, DroppedQuote{
			Venue:     r.Venue,
			EventID:   r.EventID,
			Market:    r.Market,
			Selection: r.Selection,
			Reason:    err.Error(),
		})
	}

	for _, r := range batch {
		venue, err := market.ParseVenue(r.Venue)
		if err != nil {
			drop(r, err)
			continue
		}
		mkt, err := market.ParseMarket(r.Market)
		if err != nil {
			drop(r, err)
			continue
		}
		if r.Selection == "" {
			drop(r, fmt.Errorf("empty selection"))
			continue
		}
		price, err := odds.Normalize(r.Price, r.Format)
		if err != nil {
			drop(r, err)
			continue
		}

		quotes = append(quotes, market.Quote{
			Key: market.MatchKey{
				EventID:    r.EventID,
				Market:     mkt,
				Selection:  r.Selection,
				Point:      r.Point,
				PlayerName: r.PlayerName,
			},
			Venue:      venue,
			Price:      price,
			ObservedAt: r.ObservedAt,
		})
	}
	return quotes, dropped
}
