package publisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// KafkaPublisher publica oportunidades sinalizadas no tópico de saída,
// consumido pelo alert-worker e por qualquer outro interessado.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// PublishAll envia as oportunidades de um ciclo, chaveadas por event_id
// para manter a ordenação por jogo na partição.
func (p *KafkaPublisher) PublishAll(ctx context.Context, opps []events.OpportunityFound) error {
	if len(opps) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(opps))
	for _, o := range opps {
		b, err := json.Marshal(o)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(o.EventID), Value: b})
	}

	return p.Writer.WriteMessages(ctx, msgs...)
}
