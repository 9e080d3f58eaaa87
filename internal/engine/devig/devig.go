package devig

import (
	"errors"
	"fmt"
	"sync"

	"github.com/radieske/sports-ev-scanner/internal/engine/market"
)

// ErrInsufficientSides indica mercado com menos de dois lados utilizáveis.
// O mercado é pulado no ciclo corrente; não é um erro fatal do scan.
var ErrInsufficientSides = errors.New("insufficient market sides")

// FairProbabilities remove o overround de um mercado de N lados por
// normalização proporcional: fair_i = raw_i / sum(raw). Esse é o único
// método de devig suportado, mantido por reprodutibilidade: métodos
// alternativos (power, Shin) produziriam benchmarks incomparáveis.
// Exige N >= 2 e todos os raw_i > 0.
func FairProbabilities(raw []float64) ([]float64, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: got %d side(s), need at least 2", ErrInsufficientSides, len(raw))
	}

	var sum float64
	for i, r := range raw {
		if r <= 0 {
			return nil, fmt.Errorf("%w: side %d has non-positive probability %.6f", ErrInsufficientSides, i, r)
		}
		sum += r
	}

	fair := make([]float64, len(raw))
	for i, r := range raw {
		fair[i] = r / sum
	}
	return fair, nil
}

// Cache memoiza o devig por instância de mercado (família + casa) dentro de
// um mesmo batch, evitando recomputar o mesmo mercado a cada candidato.
// Seguro para uso concorrente dentro de um ciclo de scan.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]float64
}

type cacheKey struct {
	family market.FamilyKey
	venue  market.Venue
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]float64)}
}

// FairProbabilities resolve o devig via cache; calcula uma única vez por
// (família, casa) e reaproveita nas comparações seguintes.
func (c *Cache) FairProbabilities(family market.FamilyKey, venue market.Venue, raw []float64) ([]float64, error) {
	key := cacheKey{family: family, venue: venue}

	c.mu.Lock()
	if fair, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return fair, nil
	}
	c.mu.Unlock()

	fair, err := FairProbabilities(raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = fair
	c.mu.Unlock()
	return fair, nil
}
