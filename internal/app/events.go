package app

import "sync"

// EventType names a lifecycle event observable by the control surfaces.
type EventType string

const (
	EventRecordingStarted      EventType = "recording-started"
	EventRecordingStopped      EventType = "recording-stopped"
	EventTranscribing          EventType = "transcribing"
	EventTranscriptionComplete EventType = "transcription-complete"
	EventError                 EventType = "error"
	EventDownloadProgress      EventType = "download-progress"
)

// Event is one lifecycle notification.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// Bus fans events out to subscribers. Delivery is best-effort: a subscriber
// that falls behind loses events rather than blocking the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and an unsubscribe function.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// Publish delivers evt to every subscriber that has buffer room.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
