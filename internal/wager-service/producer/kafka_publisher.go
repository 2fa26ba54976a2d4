package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/joewaltman/sidebet/internal/shared/kafka"
	"github.com/joewaltman/sidebet/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ciclo de vida de uma aposta.
// A publicação é best-effort no caminho da requisição: falha é só logada
// por quem chama, nunca falha a operação.
type KafkaPublisher struct {
	Created *kafka.Writer
	Settled *kafka.Writer
}

func NewKafkaPublisher(created, settled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Created: created, Settled: settled}
}

func (p *KafkaPublisher) PublishWagerCreated(ctx context.Context, e events.WagerCreated) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Created, e.WagerID, b)
}

func (p *KafkaPublisher) PublishWagerSettled(ctx context.Context, e events.WagerSettled) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Settled, e.WagerID, b)
}
