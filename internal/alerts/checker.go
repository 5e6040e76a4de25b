package alerts

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/everreach/warmthd/internal/contacts"
	"github.com/everreach/warmthd/internal/observability"
)

// suppressWindow is the minimum gap between two alerts for the same contact.
const suppressWindow = 7 * 24 * time.Hour

// Alert reports a watched contact whose warmth dropped below its threshold.
type Alert struct {
	ID          string    `json:"id"`
	ContactID   string    `json:"contact_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	Threshold   int       `json:"threshold"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier delivers an alert. Actual push/SMS/email delivery belongs to the
// messaging services; the default notifier just logs.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// LogNotifier writes alerts to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, a Alert) error {
	log.Printf("warmth alert: %s (%s) score %d below threshold %d", a.DisplayName, a.ContactID, a.Score, a.Threshold)
	return nil
}

// Checker scans watched contacts and raises an alert when a computed
// snapshot sits below the contact's threshold.
type Checker struct {
	store    contacts.Store
	notifier Notifier
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewChecker(store contacts.Store, notifier Notifier, metrics *observability.Metrics) *Checker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Checker{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Check runs one scan and returns how many alerts were raised.
func (c *Checker) Check(ctx context.Context) (int, error) {
	cs, err := c.store.ListContacts(ctx)
	if err != nil {
		return 0, err
	}

	now := c.now()
	raised := 0
	for _, contact := range cs {
		if !contact.WatchStatus.Watched() {
			continue
		}
		// Never alert off the neutral pre-initialization snapshot.
		if !contact.Snapshot.Computed() {
			continue
		}
		if contact.LastAlertAt != nil && now.Sub(*contact.LastAlertAt) < suppressWindow {
			continue
		}
		threshold := contact.AlertThreshold
		if threshold <= 0 {
			threshold = contacts.DefaultAlertThreshold
		}
		if contact.Snapshot.Score >= threshold {
			continue
		}

		alert := Alert{
			ID:          uuid.NewString(),
			ContactID:   contact.ID,
			DisplayName: contact.DisplayName,
			Score:       contact.Snapshot.Score,
			Threshold:   threshold,
			CreatedAt:   now,
		}
		if err := c.notifier.Notify(ctx, alert); err != nil {
			log.Printf("warmth alert: notify %s: %v", contact.ID, err)
			continue
		}
		if err := c.store.MarkAlerted(ctx, contact.ID, now); err != nil {
			log.Printf("warmth alert: mark alerted %s: %v", contact.ID, err)
			continue
		}
		if c.metrics != nil {
			c.metrics.AlertsSent.Inc()
		}
		raised++
	}
	return raised, nil
}

// Start runs Check on a fixed interval until ctx is done.
func (c *Checker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := c.Check(ctx); err != nil {
					log.Printf("warmth alert check failed: %v", err)
				} else if n > 0 {
					log.Printf("warmth alert check raised %d alerts", n)
				}
			}
		}
	}()
}
