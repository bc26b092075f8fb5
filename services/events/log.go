package eventsvc

import (
	"context"
	"sync"

	"github.com/trezcool/shule/core"
)

// LogPublisher writes events to the log.
type LogPublisher struct {
	logger core.Logger
}

var _ core.EventPublisher = (*LogPublisher)(nil) // interface compliance check

func NewLogPublisher(logger core.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, topic, key string, _ interface{}) error {
	p.logger.Debug("event "+topic, map[string]string{"topic": topic, "key": key})
	return nil
}

// Recorder keeps the published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
	Err    error // returned by Publish when set
}

var _ core.EventPublisher = (*Recorder)(nil) // interface compliance check

func (r *Recorder) Publish(_ context.Context, topic, key string, payload interface{}) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Envelope{Topic: topic, Key: key, Payload: payload})
	return nil
}

// Topics returns the topics published so far, in order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, 0, len(r.events))
	for _, e := range r.events {
		topics = append(topics, e.Topic)
	}
	return topics
}

func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.events...)
}
