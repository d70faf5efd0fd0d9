package alerts

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/sepsiscan/sepsiscan/internal/metrics"
	"github.com/sepsiscan/sepsiscan/internal/store"
)

// Alert is one caregiver notification. The scoring engine only returns
// booleans and levels; this package owns every side effect.
type Alert struct {
	ProfileID   string    `json:"profile_id"`
	ProfileName string    `json:"profile_name"`
	Level       string    `json:"level"`
	AlertLevel  string    `json:"alert_level"`
	Message     string    `json:"message"`
	Bypass      bool      `json:"bypass"`
	Timestamp   time.Time `json:"timestamp"`
}

// Channel delivers alerts to one destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// Dispatcher fans alerts out to channels and live subscribers. Each channel
// sits behind its own circuit breaker; failed sends go to the Badger outbox
// for a later drain.
type Dispatcher struct {
	store  *store.Store
	logger *zap.Logger

	mu          sync.RWMutex
	channels    []Channel
	breakers    map[string]*gobreaker.CircuitBreaker[struct{}]
	subscribers map[int]chan Alert
	nextSubID   int
}

// NewDispatcher creates a dispatcher with no channels registered.
func NewDispatcher(st *store.Store, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:       st,
		logger:      logger,
		breakers:    make(map[string]*gobreaker.CircuitBreaker[struct{}]),
		subscribers: make(map[int]chan Alert),
	}
}

// Register adds a delivery channel behind a fresh circuit breaker.
func (d *Dispatcher) Register(ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.channels = append(d.channels, ch)
	d.breakers[ch.Name()] = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        ch.Name(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// SetChannels replaces all registered channels, used on config reload.
func (d *Dispatcher) SetChannels(channels []Channel) {
	d.mu.Lock()
	d.channels = nil
	d.breakers = make(map[string]*gobreaker.CircuitBreaker[struct{}])
	d.mu.Unlock()
	for _, ch := range channels {
		d.Register(ch)
	}
}

// Subscribe returns a live alert feed and a cancel function. Slow consumers
// drop alerts rather than block dispatch.
func (d *Dispatcher) Subscribe() (<-chan Alert, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextSubID
	d.nextSubID++
	ch := make(chan Alert, 16)
	d.subscribers[id] = ch

	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if sub, ok := d.subscribers[id]; ok {
			delete(d.subscribers, id)
			close(sub)
		}
	}
}

// Dispatch delivers an alert to every subscriber and channel.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	if alert.Bypass {
		metrics.EmergencyBypassTotal.Inc()
	}

	d.mu.RLock()
	for _, sub := range d.subscribers {
		select {
		case sub <- alert:
		default:
		}
	}
	channels := append([]Channel{}, d.channels...)
	d.mu.RUnlock()

	for _, ch := range channels {
		d.send(ctx, ch, alert)
	}
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, alert Alert) error {
	d.mu.RLock()
	breaker := d.breakers[ch.Name()]
	d.mu.RUnlock()

	_, err := breaker.Execute(func() (struct{}, error) {
		return struct{}{}, ch.Send(ctx, alert)
	})
	if err != nil {
		metrics.AlertsTotal.WithLabelValues(ch.Name(), "error").Inc()
		d.logger.Warn("alert delivery failed",
			zap.String("channel", ch.Name()),
			zap.String("profile_id", alert.ProfileID),
			zap.Error(err))
		d.spool(ch.Name(), alert)
		return err
	}

	metrics.AlertsTotal.WithLabelValues(ch.Name(), "ok").Inc()
	d.logger.Info("alert delivered",
		zap.String("channel", ch.Name()),
		zap.String("profile_id", alert.ProfileID),
		zap.String("alert_level", alert.AlertLevel))
	return nil
}

// spooledAlert is one failed channel send awaiting redelivery. Spooling per
// channel keeps a partial failure from re-pinging the channels that already
// delivered.
type spooledAlert struct {
	Channel string `json:"channel"`
	Alert   Alert  `json:"alert"`
}

// spool persists an undeliverable send for the scheduled drain.
func (d *Dispatcher) spool(channel string, alert Alert) {
	if d.store == nil {
		return
	}
	payload, err := json.Marshal(spooledAlert{Channel: channel, Alert: alert})
	if err != nil {
		return
	}
	if err := d.store.Enqueue(store.QueueAlertOutbox, payload); err != nil {
		d.logger.Error("failed to spool alert", zap.Error(err))
	}
}

// DrainOutbox retries spooled sends against the one channel each record
// failed on.
func (d *Dispatcher) DrainOutbox(ctx context.Context) int {
	if d.store == nil {
		return 0
	}

	pending, err := d.store.QueueLen(store.QueueAlertOutbox)
	if err != nil {
		return 0
	}

	// Bounded by the initial depth so a still-failing channel re-spools
	// without looping forever.
	drained := 0
	for i := 0; i < pending; i++ {
		payload, err := d.store.Dequeue(store.QueueAlertOutbox)
		if err != nil {
			return drained
		}

		var rec spooledAlert
		if err := json.Unmarshal(payload, &rec); err != nil {
			d.logger.Warn("dropping malformed spooled alert", zap.Error(err))
			continue
		}

		ch := d.channel(rec.Channel)
		if ch == nil {
			d.logger.Warn("dropping spooled alert for removed channel",
				zap.String("channel", rec.Channel))
			continue
		}

		// A failed retry is re-spooled by send.
		if d.send(ctx, ch, rec.Alert) != nil {
			continue
		}
		drained++
	}
	return drained
}

func (d *Dispatcher) channel(name string) Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ch := range d.channels {
		if ch.Name() == name {
			return ch
		}
	}
	return nil
}
