// Package eventsvc publishes the domain events: to Kafka when enabled, to the log otherwise.
package eventsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Envelope is the JSON value of every published message.
type Envelope struct {
	Topic      string      `json:"topic"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
	prefix   string
}

var _ core.EventPublisher = (*KafkaPublisher)(nil) // interface compliance check

func NewKafkaPublisher(conf core.KafkaConfig) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(conf.Brokers, config)
	if err != nil {
		return nil, errors.Wrap(err, "starting kafka producer")
	}
	return NewKafkaPublisherWith(producer, conf.TopicPrefix), nil
}

// NewKafkaPublisherWith publishes through an existing producer.
func NewKafkaPublisherWith(producer sarama.SyncProducer, prefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, prefix: prefix}
}

func (p *KafkaPublisher) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish sends payload keyed by key, so that the events of one record stay ordered.
func (p *KafkaPublisher) Publish(_ context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(Envelope{Topic: topic, Key: key, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return errors.Wrapf(err, "encoding %s event", topic)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic(topic),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return errors.Wrapf(err, "publishing %s event", topic)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
