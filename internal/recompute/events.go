package recompute

import (
	"time"

	"github.com/everreach/warmthd/internal/warmth"
)

const EventSnapshotUpdated = "snapshot_updated"

// Event notifies subscribers that a contact's snapshot was replaced.
type Event struct {
	Type       string      `json:"type"`
	ContactID  string      `json:"contact_id"`
	Score      int         `json:"score"`
	Band       warmth.Band `json:"band"`
	ComputedAt time.Time   `json:"computed_at"`
}

// Subscribe registers for snapshot events. The returned cancel func must be
// called to release the channel. Slow subscribers drop events rather than
// blocking recomputes.
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 256)

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = ch
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.EventSubscribers.Inc()
	}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
			if s.metrics != nil {
				s.metrics.EventSubscribers.Dec()
			}
		}
	}
}

func (s *Service) publish(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
