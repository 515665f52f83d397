package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Topic names. Dashboards subscribe to their role topic; patients subscribe
// to their report-code topic.
const TopicPolice = "police"

// HospitalTopic is the per-hospital notification channel.
func HospitalTopic(hospitalID uint) string {
	return fmt.Sprintf("hospital:%d", hospitalID)
}

// AmbulanceTopic is the per-vehicle mission channel.
func AmbulanceTopic(ambulanceID uint) string {
	return fmt.Sprintf("ambulance:%d", ambulanceID)
}

// EmergencyTopic is the patient-facing tracking channel for one report.
func EmergencyTopic(reportCode string) string {
	return fmt.Sprintf("emergency:%s", reportCode)
}

// Event is one update pushed to subscribers.
type Event struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Subscription is one client's view of the hub. Events delivers in publish
// order; Close detaches the subscriber and releases the channel.
type Subscription struct {
	id     uuid.UUID
	topics []string
	events chan Event

	hub       *Hub
	closeOnce sync.Once
}

// Events returns the subscriber's delivery channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.unsubscribe(s)
		close(s.events)
	})
}

// Hub fans events out to topic subscribers. Delivery is best-effort with a
// bounded buffer per client; a slow consumer drops events and recovers via
// the polling endpoints, which remain the consistency baseline.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[uuid.UUID]*Subscription
	log         zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[uuid.UUID]*Subscription),
		log:         log,
	}
}

const subscriberBuffer = 16

// Subscribe attaches a new subscriber to the given topics.
func (h *Hub) Subscribe(topics []string) *Subscription {
	sub := &Subscription{
		id:     uuid.New(),
		topics: topics,
		events: make(chan Event, subscriberBuffer),
		hub:    h,
	}

	h.mu.Lock()
	for _, t := range topics {
		if h.subscribers[t] == nil {
			h.subscribers[t] = make(map[uuid.UUID]*Subscription)
		}
		h.subscribers[t][sub.id] = sub
	}
	h.mu.Unlock()

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	for _, t := range sub.topics {
		if subs := h.subscribers[t]; subs != nil {
			delete(subs, sub.id)
			if len(subs) == 0 {
				delete(h.subscribers, t)
			}
		}
	}
	h.mu.Unlock()
}

// Publish delivers an event to every subscriber of the topic without
// blocking the caller.
func (h *Hub) Publish(topic, eventType string, payload interface{}) {
	evt := Event{
		Type:      eventType,
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers[topic] {
		select {
		case sub.events <- evt:
		default:
			h.log.Warn().
				Str("topic", topic).
				Str("event", eventType).
				Msg("dropping event for slow subscriber")
		}
	}
}

// SubscriberCount reports how many clients listen on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}
