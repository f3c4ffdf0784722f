package timer

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	calls atomic.Int32
	err   error
	done  chan Arrival
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{err: err, done: make(chan Arrival, 16)}
}

func (n *recordingNotifier) NotifyArrival(_ context.Context, a Arrival) error {
	n.calls.Add(1)
	n.done <- a
	return n.err
}

func waitArrival(t *testing.T, n *recordingNotifier) Arrival {
	t.Helper()
	select {
	case a := <-n.done:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}
	return Arrival{}
}

func TestTracker_Observe(t *testing.T) {
	ctx := context.Background()

	t.Run("Durations by delivery mode", func(t *testing.T) {
		clock := newFakeClock()
		tr := NewTracker(storage.NewMemoryStore(), newRecordingNotifier(nil), WithClock(clock.Now))
		defer tr.Stop()

		pickup, err := tr.Observe(ctx, Watch{OrderID: "o1"})
		require.NoError(t, err)
		assert.Equal(t, 120, pickup.Remaining)
		assert.Equal(t, "02:00", pickup.Display)
		assert.Equal(t, "Ready for pickup", pickup.Label)

		delivery, err := tr.Observe(ctx, Watch{OrderID: "o2", Delivery: true})
		require.NoError(t, err)
		assert.Equal(t, 600, delivery.Remaining)
		assert.Equal(t, "10:00", delivery.Display)
		assert.Equal(t, "On the way", delivery.Label)
		assert.Equal(t, 0, delivery.Progress)
	})

	t.Run("Persists the start instant", func(t *testing.T) {
		clock := newFakeClock()
		store := storage.NewMemoryStore()
		tr := NewTracker(store, newRecordingNotifier(nil), WithClock(clock.Now))
		defer tr.Stop()

		_, err := tr.Observe(ctx, Watch{OrderID: "o1"})
		require.NoError(t, err)

		raw, err := store.Get(ctx, "timer_start_o1")
		require.NoError(t, err)
		assert.Equal(t, strconv.FormatInt(clock.Now().UnixMilli(), 10), string(raw))
	})

	t.Run("Survives a reload", func(t *testing.T) {
		clock := newFakeClock()
		store := storage.NewMemoryStore()

		first := NewTracker(store, newRecordingNotifier(nil), WithClock(clock.Now))
		_, err := first.Observe(ctx, Watch{OrderID: "o1"})
		require.NoError(t, err)
		first.Stop()

		clock.Advance(50 * time.Second)

		second := NewTracker(store, newRecordingNotifier(nil), WithClock(clock.Now))
		defer second.Stop()
		st, err := second.Observe(ctx, Watch{OrderID: "o1"})
		require.NoError(t, err)
		assert.Equal(t, 70, st.Remaining)
		assert.Equal(t, "01:10", st.Display)
	})

	t.Run("Malformed start restarts the countdown", func(t *testing.T) {
		clock := newFakeClock()
		store := storage.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "timer_start_o1", []byte("yesterday")))

		tr := NewTracker(store, newRecordingNotifier(nil), WithClock(clock.Now))
		defer tr.Stop()
		st, err := tr.Observe(ctx, Watch{OrderID: "o1", Delivery: true})
		require.NoError(t, err)
		assert.Equal(t, 600, st.Remaining)
	})

	t.Run("Invalid order id", func(t *testing.T) {
		tr := NewTracker(storage.NewMemoryStore(), newRecordingNotifier(nil))
		defer tr.Stop()
		_, err := tr.Observe(ctx, Watch{OrderID: " "})
		assert.ErrorIs(t, err, ErrInvalidOrder)
	})
}

func TestTracker_Tick_FiresOnce(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notifier := newRecordingNotifier(nil)
	counters := metrics.NewCounters()
	tr := NewTracker(storage.NewMemoryStore(), notifier, WithClock(clock.Now), WithCounters(counters))
	defer tr.Stop()

	var arrived []Arrival
	var mu sync.Mutex
	tr.Subscribe(func(a Arrival) {
		mu.Lock()
		arrived = append(arrived, a)
		mu.Unlock()
	})

	_, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com"})
	require.NoError(t, err)

	clock.Advance(119 * time.Second)
	tr.Tick()
	left, err := tr.Remaining("o1")
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	clock.Advance(time.Second)
	tr.Tick()
	a := waitArrival(t, notifier)
	assert.Equal(t, "o1", a.OrderID)
	assert.Equal(t, "pickup", a.DeliveryMode())
	require.Eventually(t, func() bool {
		st, _ := tr.Status("o1")
		return st.Notification == NotifySent
	}, 2*time.Second, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		tr.Tick()
	}
	tr.Stop()

	assert.Equal(t, int32(1), notifier.calls.Load())
	assert.Equal(t, uint64(1), counters.Get(metrics.NotificationsSent).Load())
	mu.Lock()
	assert.Len(t, arrived, 1)
	mu.Unlock()
}

func TestTracker_Tick_SkipsExpiredOnFirstSight(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "timer_start_o1", []byte(strconv.FormatInt(clock.Now().Add(-time.Hour).UnixMilli(), 10))))

	notifier := newRecordingNotifier(nil)
	tr := NewTracker(store, notifier, WithClock(clock.Now))

	st, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com"})
	require.NoError(t, err)
	assert.True(t, st.Arrived)

	tr.Tick()
	tr.Tick()
	tr.Stop()
	assert.Equal(t, int32(0), notifier.calls.Load())
}

func TestTracker_Tick_GuestIsSkipped(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notifier := newRecordingNotifier(nil)
	tr := NewTracker(storage.NewMemoryStore(), notifier, WithClock(clock.Now))
	defer tr.Stop()

	_, err := tr.Observe(ctx, Watch{OrderID: "o1"})
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	tr.Tick()

	st, err := tr.Status("o1")
	require.NoError(t, err)
	assert.Equal(t, NotifySkipped, st.Notification)
	assert.Equal(t, int32(0), notifier.calls.Load())
}

func TestTracker_FailureAndRetry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notifier := newRecordingNotifier(errors.New("backend down"))
	counters := metrics.NewCounters()
	tr := NewTracker(storage.NewMemoryStore(), notifier, WithClock(clock.Now), WithCounters(counters))
	defer tr.Stop()

	_, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com", Delivery: true})
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	tr.Tick()
	waitArrival(t, notifier)

	require.Eventually(t, func() bool {
		st, _ := tr.Status("o1")
		return st.Notification == NotifyFailed
	}, 2*time.Second, 10*time.Millisecond)

	clock.Advance(time.Second)
	tr.Tick()
	assert.Equal(t, int32(1), notifier.calls.Load())

	notifier.err = nil
	st, err := tr.Retry(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, NotifySent, st.Notification)
	assert.Empty(t, st.Error)

	_, err = tr.Retry(ctx, "o1")
	assert.ErrorIs(t, err, ErrNotRetryable)

	_, err = tr.Retry(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownOrder)

	assert.Equal(t, uint64(1), counters.Get(metrics.NotificationsFailed).Load())
	assert.Equal(t, uint64(1), counters.Get(metrics.NotificationsSent).Load())
}

func TestTracker_Tick_DropsSettledOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("Sent and skipped orders leave on the next tick", func(t *testing.T) {
		clock := newFakeClock()
		notifier := newRecordingNotifier(nil)
		tr := NewTracker(storage.NewMemoryStore(), notifier, WithClock(clock.Now))
		defer tr.Stop()

		_, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com"})
		require.NoError(t, err)
		_, err = tr.Observe(ctx, Watch{OrderID: "o2"})
		require.NoError(t, err)
		_, err = tr.Observe(ctx, Watch{OrderID: "o3", Delivery: true})
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		tr.Tick()
		waitArrival(t, notifier)
		require.Eventually(t, func() bool {
			st, _ := tr.Status("o1")
			return st.Notification == NotifySent
		}, 2*time.Second, 10*time.Millisecond)
		require.Len(t, tr.Snapshot(), 3)

		tr.Tick()
		_, err = tr.Status("o1")
		assert.ErrorIs(t, err, ErrUnknownOrder)
		_, err = tr.Status("o2")
		assert.ErrorIs(t, err, ErrUnknownOrder)

		snap := tr.Snapshot()
		require.Len(t, snap, 1)
		assert.Equal(t, "o3", snap[0].OrderID)

		st, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com"})
		require.NoError(t, err)
		assert.True(t, st.Arrived)
		assert.Equal(t, NotifyNone, st.Notification)

		tr.Tick()
		tr.Tick()
		assert.Equal(t, int32(1), notifier.calls.Load())
		assert.Len(t, tr.Snapshot(), 1)
	})

	t.Run("Failed orders stay until retried", func(t *testing.T) {
		clock := newFakeClock()
		notifier := newRecordingNotifier(errors.New("backend down"))
		tr := NewTracker(storage.NewMemoryStore(), notifier, WithClock(clock.Now))
		defer tr.Stop()

		_, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com"})
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		tr.Tick()
		waitArrival(t, notifier)
		require.Eventually(t, func() bool {
			st, _ := tr.Status("o1")
			return st.Notification == NotifyFailed
		}, 2*time.Second, 10*time.Millisecond)

		for i := 0; i < 3; i++ {
			clock.Advance(time.Second)
			tr.Tick()
		}
		st, err := tr.Status("o1")
		require.NoError(t, err)
		assert.Equal(t, NotifyFailed, st.Notification)

		notifier.err = nil
		st, err = tr.Retry(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, NotifySent, st.Notification)

		tr.Tick()
		assert.Empty(t, tr.Snapshot())
	})
}

func TestTracker_StopDiscardsInFlight(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	started := make(chan struct{})
	notifier := NotifierFunc(func(ctx context.Context, a Arrival) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	tr := NewTracker(storage.NewMemoryStore(), notifier, WithClock(clock.Now))

	_, err := tr.Observe(ctx, Watch{OrderID: "o1", UserEmail: "lebo@example.com"})
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	tr.Tick()
	<-started

	tr.Stop()
	tr.Stop()

	st, err := tr.Status("o1")
	require.NoError(t, err)
	assert.Equal(t, NotifyPending, st.Notification)

	_, err = tr.Observe(ctx, Watch{OrderID: "o2"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestTracker_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := NewTracker(storage.NewMemoryStore(), newRecordingNotifier(nil))

	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	_, err := tr.Observe(context.Background(), Watch{OrderID: "o1"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(-3))
	assert.Equal(t, "00:59", FormatClock(59))
	assert.Equal(t, "09:05", FormatClock(545))
}
