package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// Notifier entrega alertas de oportunidade: sempre no log estruturado e,
// quando configurado, num webhook do Slack.
type Notifier struct {
	Log        *zap.Logger
	WebhookURL string
	HTTP       *http.Client
}

func New(log *zap.Logger, webhookURL string) *Notifier {
	return &Notifier{
		Log:        log,
		WebhookURL: webhookURL,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify emite o alerta. Falha no webhook sobe ao chamador; o log local
// já saiu e não se perde.
func (n *Notifier) Notify(ctx context.Context, o events.OpportunityFound) error {
	n.Log.Info("ev opportunity",
		zap.String("event_id", o.EventID),
		zap.String("market", o.Market),
		zap.String("selection", o.Selection),
		zap.String("venue", o.Venue),
		zap.Float64("price", o.Price),
		zap.Float64("ev_percent", o.EVPercent),
		zap.Float64("edge_percent", o.EdgePercent),
		zap.String("benchmark_source", o.BenchmarkSource),
		zap.Int("positive_venues", o.PositiveVenueCount),
	)

	if n.WebhookURL == "" {
		return nil
	}
	return n.postSlack(ctx, o)
}

// postSlack envia a mensagem formatada para o webhook do Slack
func (n *Notifier) postSlack(ctx context.Context, o events.OpportunityFound) error {
	body, _ := json.Marshal(map[string]string{"text": format(o)})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("slack webhook http " + resp.Status)
	}
	return nil
}

// format monta o texto do alerta com proposta, preço e benchmark
func format(o events.OpportunityFound) string {
	prop := o.Selection
	if o.PlayerName != "" {
		prop = o.PlayerName + " " + prop
	}
	if o.Point != nil {
		prop = fmt.Sprintf("%s %g", prop, *o.Point)
	}
	return fmt.Sprintf(
		":rotating_light: +EV %.2f%% | %s %s | %s @ %.2f (%s) | ref %.2f via %s | %d casas positivas",
		o.EVPercent, o.Market, prop, o.Venue, o.Price, o.EventID,
		o.BenchmarkPrice, o.BenchmarkSource, o.PositiveVenueCount,
	)
}
