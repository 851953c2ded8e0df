// Package events publishes operator-facing catalog events to Kafka and
// consumes reload requests from a control topic.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gartstein/bawsala/internal/directory/catalog"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	CatalogLoaded          EventType = "catalog_loaded"
	CatalogLoadFailed      EventType = "catalog_load_failed"
	RecordRejected         EventType = "record_rejected"
	CatalogReloadRequested EventType = "catalog_reload_requested"
)

// CatalogSummary describes one completed load.
type CatalogSummary struct {
	Companies int `json:"companies"`
	Rejected  int `json:"rejected"`
}

type Event struct {
	ID        uuid.UUID          `json:"id"`
	Type      EventType          `json:"type"`
	Occurred  time.Time          `json:"occurred"`
	Catalog   *CatalogSummary    `json:"catalog,omitempty"`
	Rejection *catalog.Rejection `json:"rejection,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType) Event {
	return Event{ID: uuid.New(), Type: eventType, Occurred: time.Now().UTC()}
}

// key groups events on one partition per kind of subject.
func (ev Event) key() string {
	if ev.Rejection != nil && ev.Rejection.ID != "" {
		return ev.Rejection.ID
	}
	return string(ev.Type)
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
}

func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
			Topic:    topic,
		},
		events:    make(chan Event, 1000),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	go p.eventLoop()
	return p, nil
}

// Produce queues ev without blocking; a full queue drops the event.
func (p *Producer) Produce(ev Event) {
	select {
	case p.events <- ev:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(ev.Type)),
			zap.String("event_id", ev.ID.String()),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case ev := <-p.events:
			p.sendEvent(context.Background(), ev)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, ev Event) {
	value, err := jsonMarshal(ev)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("event_id", ev.ID.String()),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.key()),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(ev.Type)),
			zap.String("event_id", ev.ID.String()),
		)
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// LogProducer reports events to the log only, for deployments without Kafka.
type LogProducer struct {
	logger *zap.Logger
}

func NewLogProducer(logger *zap.Logger) *LogProducer {
	return &LogProducer{logger: logger.Named("events")}
}

func (p *LogProducer) Produce(ev Event) {
	p.logger.Debug("Catalog event",
		zap.String("event_type", string(ev.Type)),
		zap.String("event_id", ev.ID.String()),
	)
}
