package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one consumed message. Returning an error leaves
// the message uncommitted so it is redelivered.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads a topic within a consumer group and feeds each message to a
// MessageHandler.
type Consumer struct {
	reader  *kafka.Reader
	handler MessageHandler
	logger  *slog.Logger
}

// NewConsumer creates a Consumer for the given topic.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1e3,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		}),
		handler: handler,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start fetches and processes messages until ctx is cancelled, then closes
// the reader. Fetch and handler errors are logged and the loop keeps going.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error("fetch failed", "error", err)
			continue
		}
		c.consume(ctx, msg)
	}
	c.logger.Info("consumer stopping")
	return c.reader.Close()
}

func (c *Consumer) consume(ctx context.Context, msg kafka.Message) {
	if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
		c.logger.Error("handler failed, message left uncommitted",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("commit failed",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
	}
}

// Close closes the underlying reader; safe to call alongside Start.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
