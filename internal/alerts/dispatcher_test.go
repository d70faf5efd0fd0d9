package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sepsiscan/sepsiscan/internal/store"
)

type fakeChannel struct {
	mu   sync.Mutex
	name string
	sent []Alert
	fail bool
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, alert Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("channel down")
	}
	f.sent = append(f.sent, alert)
	return nil
}

func (f *fakeChannel) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testAlert() Alert {
	return Alert{
		ProfileID:   "p1",
		ProfileName: "Alex",
		Level:       "High",
		AlertLevel:  "Urgent",
		Message:     "Seek urgent care immediately",
		Timestamp:   time.Now().UTC(),
	}
}

func TestDispatchDeliversToChannels(t *testing.T) {
	s, err := store.NewInMemory()
	require.NoError(t, err)
	defer s.Close()

	d := NewDispatcher(s, zaptest.NewLogger(t))
	ch := &fakeChannel{name: "test"}
	d.Register(ch)

	d.Dispatch(context.Background(), testAlert())
	assert.Equal(t, 1, ch.count())
}

func TestDispatchFansOutToSubscribers(t *testing.T) {
	d := NewDispatcher(nil, zaptest.NewLogger(t))

	feed, cancel := d.Subscribe()
	defer cancel()

	d.Dispatch(context.Background(), testAlert())

	select {
	case got := <-feed:
		assert.Equal(t, "p1", got.ProfileID)
	case <-time.After(time.Second):
		t.Fatal("no alert received")
	}
}

func TestFailedSendSpoolsAndDrains(t *testing.T) {
	s, err := store.NewInMemory()
	require.NoError(t, err)
	defer s.Close()

	d := NewDispatcher(s, zaptest.NewLogger(t))
	ch := &fakeChannel{name: "flaky", fail: true}
	d.Register(ch)

	d.Dispatch(context.Background(), testAlert())

	pending, err := s.QueueLen(store.QueueAlertOutbox)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	// Channel recovers; the drain redelivers the spooled alert.
	ch.mu.Lock()
	ch.fail = false
	ch.mu.Unlock()

	drained := d.DrainOutbox(context.Background())
	assert.Equal(t, 1, drained)
	assert.Equal(t, 1, ch.count())

	pending, err = s.QueueLen(store.QueueAlertOutbox)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestDrainOutboxRetriesOnlyFailedChannel(t *testing.T) {
	s, err := store.NewInMemory()
	require.NoError(t, err)
	defer s.Close()

	d := NewDispatcher(s, zaptest.NewLogger(t))
	steady := &fakeChannel{name: "steady"}
	flaky := &fakeChannel{name: "flaky", fail: true}
	d.Register(steady)
	d.Register(flaky)

	d.Dispatch(context.Background(), testAlert())
	assert.Equal(t, 1, steady.count())
	assert.Equal(t, 0, flaky.count())

	flaky.mu.Lock()
	flaky.fail = false
	flaky.mu.Unlock()

	drained := d.DrainOutbox(context.Background())
	assert.Equal(t, 1, drained)
	assert.Equal(t, 1, flaky.count())
	// The channel that already delivered is not pinged again.
	assert.Equal(t, 1, steady.count())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := NewDispatcher(nil, zaptest.NewLogger(t))

	feed, cancel := d.Subscribe()
	cancel()

	_, open := <-feed
	assert.False(t, open)
}
