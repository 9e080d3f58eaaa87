package benchmark

import (
	"sort"

	"github.com/radieske/sports-ev-scanner/internal/engine/devig"
	"github.com/radieske/sports-ev-scanner/internal/engine/market"
	"github.com/radieske/sports-ev-scanner/internal/engine/odds"
)

// Source indica a origem do preço de referência
type Source string

const (
	SourceSharp     Source = "sharp"
	SourceConsensus Source = "consensus"
)

// Benchmark é o registro imutável de "qual era a verdade" no instante do
// scan para uma MatchKey: probabilidade justa resolvida e preço de referência.
// É recomputado a cada ciclo a partir das cotações correntes, nunca mutado.
type Benchmark struct {
	Key                market.MatchKey
	Source             Source
	FairProbability    float64
	ReferencePrice     float64 // 1 / FairProbability
	ContributingVenues int
	SourceVenue        market.Venue // preenchido apenas quando Source == sharp
}

// Select escolhe o benchmark de uma MatchKey a partir das cotações da mesma
// família (evento + mercado + linha + jogador):
//
//  1. se a casa sharp designada cotou exatamente essa chave, usa o devig dos
//     lados dela (fonte "sharp");
//  2. senão, se ao menos minConsensus casas distintas cotaram a chave, usa a
//     MEDIANA das probabilidades justas por casa (robusta a outlier único);
//  3. senão retorna nil: sem benchmark, a chave não gera oportunidade.
//
// Linhas divergentes nunca se misturam: a família já fixa o Point, então uma
// casa cotando 21.0 não contribui para o benchmark da linha 20.5.
func Select(key market.MatchKey, family []market.Quote, sharpVenue market.Venue, minConsensus int, cache *devig.Cache) *Benchmark {
	fam := key.Family()

	// Agrupa as cotações por casa, mantendo a mais recente por seleção
	// e ignorando qualquer cotação fora da família.
	byVenue := make(map[market.Venue]map[string]market.Quote)
	for _, q := range family {
		if q.Key.Family() != fam {
			continue
		}
		sides, ok := byVenue[q.Venue]
		if !ok {
			sides = make(map[string]market.Quote)
			byVenue[q.Venue] = sides
		}
		if prev, ok := sides[q.Key.Selection]; !ok || q.ObservedAt.After(prev.ObservedAt) {
			sides[q.Key.Selection] = q
		}
	}

	// 1) sharp: exige cotação da casa designada para a chave exata
	if sharpVenue != "" {
		if fair, ok := venueFair(key, fam, sharpVenue, byVenue[sharpVenue], cache); ok {
			return &Benchmark{
				Key:                key,
				Source:             SourceSharp,
				FairProbability:    fair,
				ReferencePrice:     1 / fair,
				ContributingVenues: 1,
				SourceVenue:        sharpVenue,
			}
		}
	}

	// 2) consenso: mediana das probabilidades justas das casas que cotaram a chave
	fairs := make([]float64, 0, len(byVenue))
	for venue, sides := range byVenue {
		if fair, ok := venueFair(key, fam, venue, sides, cache); ok {
			fairs = append(fairs, fair)
		}
	}
	if len(fairs) < minConsensus {
		return nil
	}

	med := median(fairs)
	return &Benchmark{
		Key:                key,
		Source:             SourceConsensus,
		FairProbability:    med,
		ReferencePrice:     1 / med,
		ContributingVenues: len(fairs),
	}
}

// venueFair resolve a probabilidade justa de uma casa para a seleção da chave.
// Com dois ou mais lados cotados aplica o devig proporcional; com um lado só,
// usa a probabilidade implícita bruta (não há overround mensurável de um lado).
func venueFair(key market.MatchKey, fam market.FamilyKey, venue market.Venue, sides map[string]market.Quote, cache *devig.Cache) (float64, bool) {
	target, ok := sides[key.Selection]
	if !ok || !target.Key.Equal(key) {
		return 0, false
	}

	if len(sides) < 2 {
		return odds.ImpliedProbability(target.Price), true
	}

	// Ordena as seleções para que o resultado seja determinístico
	selections := make([]string, 0, len(sides))
	for sel := range sides {
		selections = append(selections, sel)
	}
	sort.Strings(selections)

	raw := make([]float64, len(selections))
	idx := -1
	for i, sel := range selections {
		raw[i] = odds.ImpliedProbability(sides[sel].Price)
		if sel == key.Selection {
			idx = i
		}
	}

	var fair []float64
	var err error
	if cache != nil {
		fair, err = cache.FairProbabilities(fam, venue, raw)
	} else {
		fair, err = devig.FairProbabilities(raw)
	}
	if err != nil {
		return 0, false
	}
	return fair[idx], true
}

// median retorna a mediana; para quantidade par, a média dos dois centrais
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
