package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client encapsula as chamadas REST à The Odds API v4. Todas as cotações
// são pedidas em formato decimal; a notação é propagada no batch para a
// normalização no scan.
type Client struct {
	BaseURL string
	APIKey  string
	Sport   string
	Regions string
	HTTP    *http.Client
	Log     *zap.Logger
}

func New(baseURL, apiKey, sport string, log *zap.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Sport:   sport,
		Regions: "us,eu",
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

// Event é um evento como retornado pelos endpoints de odds
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

type Bookmaker struct {
	Key     string        `json:"key"`
	Markets []MarketBlock `json:"markets"`
}

type MarketBlock struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome é uma seleção cotada. Description carrega o nome do jogador em
// mercados de props; vem vazio em mercados de jogo.
type Outcome struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ScoreEvent é um evento do endpoint /scores
type ScoreEvent struct {
	ID           string       `json:"id"`
	CommenceTime time.Time    `json:"commence_time"`
	Completed    bool         `json:"completed"`
	HomeTeam     string       `json:"home_team"`
	AwayTeam     string       `json:"away_team"`
	Scores       []ScoreEntry `json:"scores"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// FetchGameOdds busca as cotações de um mercado de jogo (h2h, spreads,
// totals) para todos os eventos futuros, via endpoint bulk.
func (c *Client) FetchGameOdds(ctx context.Context, mkt string) ([]Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("regions", c.Regions)
	q.Set("markets", mkt)
	q.Set("oddsFormat", "decimal")

	var out []Event
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/odds", c.Sport), q, &out); err != nil {
		return nil, err
	}
	c.Log.Info("fetched game odds", zap.String("market", mkt), zap.Int("events", len(out)))
	return out, nil
}

// ListEventIDs busca a lista de eventos futuros do esporte
func (c *Client) ListEventIDs(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)

	var raw []struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/events", c.Sport), q, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, len(raw))
	for i, e := range raw {
		ids[i] = e.ID
	}
	return ids, nil
}

// FetchEventProps busca cotações de props de jogador para um único evento,
// via endpoint por evento (a API não serve props no bulk).
func (c *Client) FetchEventProps(ctx context.Context, eventID string, markets []string) (*Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("regions", c.Regions)
	q.Set("markets", strings.Join(markets, ","))
	q.Set("oddsFormat", "decimal")

	var out Event
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/events/%s/odds", c.Sport, eventID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchScores busca placares de jogos encerrados nos últimos daysFrom dias
func (c *Client) FetchScores(ctx context.Context, daysFrom int) ([]ScoreEvent, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("daysFrom", fmt.Sprintf("%d", daysFrom))

	var out []ScoreEvent
	if err := c.get(ctx, fmt.Sprintf("/sports/%s/scores", c.Sport), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odds api: %s returned %d", path, resp.StatusCode)
	}

	// A API devolve a cota restante do plano nesse header
	if remaining := resp.Header.Get("x-requests-remaining"); remaining != "" {
		c.Log.Debug("odds api quota", zap.String("requests_remaining", remaining))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
