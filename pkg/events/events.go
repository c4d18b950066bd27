package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

type Kafka struct {
	writer *kafka.Writer
	prefix string
}

// NewKafka builds a writer that routes each message by its own topic and hashes keys so
// events of one aggregate stay ordered.
func NewKafka(brokers []string, topicPrefix string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		},
		prefix: topicPrefix,
	}
}

func (k *Kafka) Publish(ctx context.Context, topic, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic: Topic(k.prefix, topic),
		Key:   []byte(key),
		Value: b,
		Time:  time.Now().UTC(),
	})
}

func (k *Kafka) Close() error { return k.writer.Close() }

func Topic(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Log is used when no brokers are configured; events only reach the log.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log { return &Log{log: log} }

func (l *Log) Publish(_ context.Context, topic, key string, payload any) error {
	l.log.Debug("event", zap.String("topic", topic), zap.String("key", key), zap.Any("payload", payload))
	return nil
}

func (l *Log) Close() error { return nil }
