package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Conf wraps the kafka producer used for order events.
type Conf struct {
	client *kgo.Client
	topic  string
}

func NewConf(brokers string, topic string) (*Conf, error) {
	if brokers == "" {
		return nil, fmt.Errorf("kafka brokers are empty")
	}
	if topic == "" {
		topic = Topic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Conf{client: client, topic: topic}, nil
}

// PublishOrderConfirmed produces one event record, keyed by order id so
// per-order records stay in one partition.
func (c *Conf) PublishOrderConfirmed(ctx context.Context, event OrderConfirmedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.OrderID),
		Value: value,
	}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce order event: %w", err)
	}
	return nil
}

func (c *Conf) Close() {
	c.client.Close()
}
