package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicUsers      = "user_events"
	TopicCart       = "cart_events"
	TopicWishlist   = "wishlist_events"
	TopicProducts   = "product_events"
	TopicPromotions = "promotion_events"
)

const (
	BackendNone     = "none"
	BackendKafka    = "kafka"
	BackendRabbitMQ = "rabbitmq"
)

const publishTimeout = 5 * time.Second

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

func (e Event) encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", e.Type, err)
	}
	return data, nil
}

type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Close() error
}

type Options struct {
	Backend      string
	KafkaBrokers []string
	RabbitMQURL  string
}

func New(opts Options) (Publisher, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendNone:
		return Nop{}, nil
	case BackendKafka:
		p, err := NewKafkaPublisher(opts.KafkaBrokers)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendRabbitMQ:
		p, err := NewRabbitPublisher(opts.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported events backend %q", opts.Backend)
	}
}

// Emit publishes ev with a bounded timeout. Failures are logged and dropped.
func Emit(ctx context.Context, pub Publisher, topic, eventType, key string, data any) {
	if pub == nil {
		return
	}

	ev := Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Data: data}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := pub.Publish(pctx, topic, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", topic, "type", eventType, "error", err)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
func (Nop) Close() error                                 { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events map[string][]Event
}

func NewRecorder() *Recorder {
	return &Recorder{events: map[string][]Event{}}
}

func (r *Recorder) Publish(_ context.Context, topic string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[topic] = append(r.events[topic], ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events[topic]))
	copy(out, r.events[topic])
	return out
}

func (r *Recorder) Types(topic string) []string {
	evs := r.Events(topic)
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}
