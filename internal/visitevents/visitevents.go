// Package visitevents publishes will-visit telemetry to Kafka.
package visitevents

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/core/observability"
)

type Event struct {
	ID        model.ID  `json:"id"`
	SearchLat float64   `json:"searchLat"`
	SearchLon float64   `json:"searchLon"`
	Radius    int       `json:"radius"`
	SessionID string    `json:"sessionId,omitempty"`
	TS        time.Time `json:"ts"`
}

type Publisher struct {
	topic   string
	events  chan Event
	prod    sarama.AsyncProducer
	logger  *slog.Logger
	stopped chan struct{}
}

func NewPublisher(brokers []string, topic string, queueSize int, logger *slog.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("visitevents: create async producer: %w", err)
	}
	return NewWithProducer(prod, topic, queueSize, logger), nil
}

// NewWithProducer wraps an existing producer; the Publisher owns it afterwards.
func NewWithProducer(prod sarama.AsyncProducer, topic string, queueSize int, logger *slog.Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Publisher{
		topic:   topic,
		events:  make(chan Event, queueSize),
		prod:    prod,
		logger:  logger,
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				p.logger.Warn("visitevents: marshal error", "err", err)
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(model.IDToStr(ev.ID)),
				Value: sarama.ByteEncoder(b),
			}
			observability.IncKafkaEvent("visit", "sent")
		}
	}()

	go func() {
		for err := range p.prod.Errors() {
			if err != nil {
				observability.IncKafkaEvent("visit", "error")
				p.logger.Warn("visitevents: producer error", "err", err)
			}
		}
	}()

	return p
}

// Publish never blocks the request path; when the queue is full the event is
// dropped.
func (p *Publisher) Publish(ev Event) {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
	default:
		observability.IncKafkaEvent("visit", "dropped")
	}
}

func (p *Publisher) Close() error {
	close(p.events)
	<-p.stopped

	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("visitevents: close producer: %w", err)
	}
	return nil
}
