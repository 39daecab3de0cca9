package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

type ActivityType string

const (
	ActivityCommentCreated  ActivityType = "comment.created"
	ActivityCommentUpdated  ActivityType = "comment.updated"
	ActivityCommentDeleted  ActivityType = "comment.deleted"
	ActivityTemplateLiked   ActivityType = "template.liked"
	ActivityTemplateUnliked ActivityType = "template.unliked"
)

// ActivityEvent is one record on the activity topic.
type ActivityEvent struct {
	Type       ActivityType `json:"type"`
	TemplateID string       `json:"templateId"`
	UserID     string       `json:"userId"`
	CommentID  string       `json:"commentId,omitempty"`
	Likes      *int         `json:"likes,omitempty"`
	At         time.Time    `json:"at"`
}

// ActivityPublisher records successful mutations. Publish must not block the caller.
type ActivityPublisher interface {
	Publish(ctx context.Context, event ActivityEvent)
	Close() error
}

type NoopActivityPublisher struct{}

func (NoopActivityPublisher) Publish(context.Context, ActivityEvent) {}
func (NoopActivityPublisher) Close() error                           { return nil }

const activityQueueSize = 1024

// KafkaActivityPublisher queues events and ships them from a single goroutine.
// Events are dropped with a warning when the queue is full or the publisher is closed.
type KafkaActivityPublisher struct {
	producer sarama.SyncProducer
	topic    string
	queue    chan ActivityEvent
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewKafkaActivityPublisher(producer sarama.SyncProducer, topic string) *KafkaActivityPublisher {
	p := &KafkaActivityPublisher{
		producer: producer,
		topic:    topic,
		queue:    make(chan ActivityEvent, activityQueueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaActivityPublisher) Publish(_ context.Context, event ActivityEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		slog.Warn("Activity publisher closed, dropping event", "type", event.Type, "templateID", event.TemplateID)
		return
	}
	select {
	case p.queue <- event:
	default:
		slog.Warn("Activity queue full, dropping event", "type", event.Type, "templateID", event.TemplateID)
	}
}

func (p *KafkaActivityPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("Failed to marshal activity event", "error", err)
			continue
		}
		partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.TemplateID),
			Value: sarama.ByteEncoder(data),
		})
		if err != nil {
			slog.Error("Failed to publish activity event", "type", event.Type, "templateID", event.TemplateID, "error", err)
			continue
		}
		slog.Debug("Published activity event", "type", event.Type, "partition", partition, "offset", offset)
	}
}

// Close flushes queued events and closes the producer.
// Later calls are no-ops.
func (p *KafkaActivityPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.producer.Close()
}
