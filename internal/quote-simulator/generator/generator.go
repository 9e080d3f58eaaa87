package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// Catálogo fixo de jogos simulados para geração de cotações
var catalog = []struct {
	ID   string
	Home string
	Away string
}{
	{"GAME_001", "Boston Celtics", "Miami Heat"},
	{"GAME_002", "Denver Nuggets", "Los Angeles Lakers"},
	{"GAME_003", "Milwaukee Bucks", "Philadelphia 76ers"},
	{"GAME_004", "Golden State Warriors", "Phoenix Suns"},
}

var players = []string{
	"Jayson Tatum", "Nikola Jokic", "Giannis Antetokounmpo", "Stephen Curry",
}

// DefaultRecreationalVenues são as casas recreativas simuladas por padrão.
// Precisam ser keys conhecidas do enum de casas; caso contrário o scan
// descarta cada linha na validação.
var DefaultRecreationalVenues = []string{
	"draftkings", "fanduel", "betmgm", "williamhill_us", "espnbet", "betrivers",
}

// Generator produz batches sintéticos de cotações com a mesma forma dos
// batches reais: uma casa sharp com margem baixa, casas recreativas com
// margem maior e ruído, overlays ocasionais (preço acima do justo) e, de
// vez em quando, uma linha malformada para exercitar o descarte do scan.
type Generator struct {
	Sport      string
	SharpVenue string
	Venues     []string // casas recreativas, sem a sharp
	rng        *rand.Rand
}

func New(sport, sharpVenue string, venues []string) *Generator {
	return &Generator{
		Sport:      sport,
		SharpVenue: sharpVenue,
		Venues:     venues,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Batch gera um snapshot completo: h2h, spread, total e uma prop de
// jogador por jogo, cotados pela sharp e por todas as recreativas.
func (g *Generator) Batch(source string) events.QuoteBatch {
	now := time.Now().UTC()
	var rows []events.QuoteRow

	for i, game := range catalog {
		homeFair := g.rnd(0.35, 0.65)
		rows = append(rows, g.twoWay(game.ID, "h2h", game.Home, game.Away, nil, "", homeFair, now)...)

		spread := g.halfLine(-9.5, 9.5)
		rows = append(rows, g.twoWay(game.ID, "spreads", game.Home, game.Away, &spread, "", g.rnd(0.47, 0.53), now)...)

		total := g.halfLine(205.5, 235.5)
		rows = append(rows, g.twoWay(game.ID, "totals", "Over", "Under", &total, "", g.rnd(0.47, 0.53), now)...)

		points := g.halfLine(18.5, 32.5)
		rows = append(rows, g.twoWay(game.ID, "player_points", "Over", "Under", &points, players[i], g.rnd(0.45, 0.55), now)...)
	}

	// Uma linha inválida de vez em quando; o scan deve descartá-la com
	// diagnóstico sem abortar o resto do batch
	if g.rng.Intn(10) == 0 {
		rows = append(rows, events.QuoteRow{
			EventID:     catalog[0].ID,
			Market:      "h2h",
			Selection:   catalog[0].Home,
			Venue:       "unknown_book",
			Price:       0.95,
			PriceFormat: "decimal",
			ObservedAt:  now,
		})
	}

	return events.QuoteBatch{
		BatchID:    uuid.NewString(),
		Sport:      g.Sport,
		Rows:       rows,
		Source:     source,
		ProducedAt: now,
	}
}

// twoWay cota os dois lados de um mercado em todas as casas
func (g *Generator) twoWay(eventID, mkt, selA, selB string, point *float64, player string, fairA float64, now time.Time) []events.QuoteRow {
	fairs := map[string]float64{selA: fairA, selB: 1 - fairA}
	var rows []events.QuoteRow

	for sel, fair := range fairs {
		// Sharp: margem baixa e estável
		rows = append(rows, events.QuoteRow{
			EventID: eventID, Market: mkt, Selection: sel, Point: point, PlayerName: player,
			Venue: g.SharpVenue, Price: g.price(fair, 0.025, 0.005), PriceFormat: "decimal", ObservedAt: now,
		})

		for _, venue := range g.Venues {
			margin := g.rnd(0.04, 0.07)
			if g.rng.Intn(20) == 0 {
				margin = -0.04 // overlay: preço acima do justo, candidato a +EV
			}
			rows = append(rows, events.QuoteRow{
				EventID: eventID, Market: mkt, Selection: sel, Point: point, PlayerName: player,
				Venue: venue, Price: g.price(fair, margin, 0.01), PriceFormat: "decimal", ObservedAt: now,
			})
		}
	}
	return rows
}

// price aplica margem e ruído sobre o preço justo 1/fair
func (g *Generator) price(fair, margin, noise float64) float64 {
	p := (1 / fair) * (1 - margin + g.rnd(-noise, noise))
	if p <= 1.01 {
		p = 1.01
	}
	return round2(p)
}

// halfLine gera uma linha terminada em .5 dentro do intervalo
func (g *Generator) halfLine(min, max float64) float64 {
	steps := int((max - min) / 1.0)
	return min + float64(g.rng.Intn(steps+1))
}

// rnd gera número aleatório entre min e max
func (g *Generator) rnd(min, max float64) float64 {
	return (g.rng.Float64() * (max - min)) + min
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// Describe resume o catálogo simulado para logging de inicialização
func Describe() string {
	return fmt.Sprintf("%d games, %d players", len(catalog), len(players))
}
