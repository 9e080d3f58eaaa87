package market

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownVenue  = errors.New("unknown venue")
	ErrUnknownMarket = errors.New("unknown market")
)

// Venue identifica uma casa de apostas pelo key usado na The Odds API.
// A enumeração é fechada: valores fora da lista são rejeitados na validação.
type Venue string

const (
	VenuePinnacle     Venue = "pinnacle"
	VenueBet365       Venue = "bet365"
	VenueFanDuel      Venue = "fanduel"
	VenueDraftKings   Venue = "draftkings"
	VenueBetMGM       Venue = "betmgm"
	VenueBetway       Venue = "betway"
	VenueCaesars      Venue = "williamhill_us"
	VenueSportsInt    Venue = "sportsinteraction"
	VenueBet99        Venue = "bet99"
	VenueProline      Venue = "proline"
	VenueESPNBet      Venue = "espnbet"
	VenueHardRock     Venue = "hardrockbet"
	VenueFliff        Venue = "fliff"
	VenueBetRivers    Venue = "betrivers"
	VenueBovada       Venue = "bovada"
)

var knownVenues = map[Venue]struct{}{
	VenuePinnacle: {}, VenueBet365: {}, VenueFanDuel: {}, VenueDraftKings: {},
	VenueBetMGM: {}, VenueBetway: {}, VenueCaesars: {}, VenueSportsInt: {},
	VenueBet99: {}, VenueProline: {}, VenueESPNBet: {}, VenueHardRock: {},
	VenueFliff: {}, VenueBetRivers: {}, VenueBovada: {},
}

// ParseVenue valida um key de casa de apostas vindo de fora (API, Kafka, HTTP)
func ParseVenue(s string) (Venue, error) {
	v := Venue(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownVenues[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVenue, s)
	}
	return v, nil
}

// Market identifica o tipo de mercado (moneyline, spread, total ou prop de jogador)
type Market string

const (
	MarketMoneyline Market = "h2h"
	MarketSpreads   Market = "spreads"
	MarketTotals    Market = "totals"

	MarketPlayerPoints   Market = "player_points"
	MarketPlayerRebounds Market = "player_rebounds"
	MarketPlayerAssists  Market = "player_assists"
	MarketPlayerThrees   Market = "player_threes"
	MarketPlayerBlocks   Market = "player_blocks"
	MarketPlayerSteals   Market = "player_steals"
	MarketPlayerPRA      Market = "player_points_rebounds_assists"
	MarketPlayerPR       Market = "player_points_rebounds"
	MarketPlayerPA       Market = "player_points_assists"
	MarketPlayerRA       Market = "player_rebounds_assists"
)

var knownMarkets = map[Market]struct{}{
	MarketMoneyline: {}, MarketSpreads: {}, MarketTotals: {},
	MarketPlayerPoints: {}, MarketPlayerRebounds: {}, MarketPlayerAssists: {},
	MarketPlayerThrees: {}, MarketPlayerBlocks: {}, MarketPlayerSteals: {},
	MarketPlayerPRA: {}, MarketPlayerPR: {}, MarketPlayerPA: {}, MarketPlayerRA: {},
}

// ParseMarket valida um key de mercado vindo de fora
func ParseMarket(s string) (Market, error) {
	m := Market(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownMarkets[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMarket, s)
	}
	return m, nil
}

// IsProp indica se o mercado é prop de jogador (sem liquidação automática)
func (m Market) IsProp() bool {
	switch m {
	case MarketMoneyline, MarketSpreads, MarketTotals:
		return false
	}
	return true
}

// MatchKey identifica uma proposta apostável única: evento, mercado, seleção,
// linha de pontos (quando houver) e jogador (apenas props).
// Duas cotações são "a mesma aposta" somente com igualdade exata de todos os
// campos, inclusive Point: 20.5 e 21.0 nunca se equivalem.
type MatchKey struct {
	EventID    string
	Market     Market
	Selection  string
	Point      *float64
	PlayerName string
}

// FamilyKey agrupa os lados complementares de um mesmo mercado:
// MatchKey sem a seleção. É a chave de agrupamento para devig e consenso.
type FamilyKey struct {
	EventID    string
	Market     Market
	Point      string
	PlayerName string
}

func formatPoint(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

// Family deriva a chave de agrupamento do mercado
func (k MatchKey) Family() FamilyKey {
	return FamilyKey{
		EventID:    k.EventID,
		Market:     k.Market,
		Point:      formatPoint(k.Point),
		PlayerName: k.PlayerName,
	}
}

// ID retorna a representação canônica da chave, usada em mapas e dedup
func (k MatchKey) ID() string {
	return k.EventID + "|" + string(k.Market) + "|" + k.Selection + "|" +
		formatPoint(k.Point) + "|" + k.PlayerName
}

// Equal compara duas chaves campo a campo, com igualdade exata de Point
func (k MatchKey) Equal(o MatchKey) bool {
	if k.EventID != o.EventID || k.Market != o.Market ||
		k.Selection != o.Selection || k.PlayerName != o.PlayerName {
		return false
	}
	if (k.Point == nil) != (o.Point == nil) {
		return false
	}
	return k.Point == nil || *k.Point == *o.Point
}

// Quote é a cotação de uma casa para uma MatchKey em um instante.
// Imutável: cada poll produz novas instâncias, nunca altera as antigas.
type Quote struct {
	Key        MatchKey
	Venue      Venue
	Price      float64 // multiplicador decimal, sempre > 1.0
	ObservedAt time.Time
}
