package timer

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"nextgen-storefront/internal/event"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/storage"

	"go.uber.org/zap"
)

const (
	tickInterval  = time.Second
	notifyTimeout = 10 * time.Second
)

type entry struct {
	watch    Watch
	start    time.Time
	duration time.Duration

	last  int
	fired bool

	state NotifyState
	err   error
}

// Tracker counts down every observed order. Remaining time is derived from
// the persisted start instant on each read, so restarts never reset it.
//
// The arrival notification fires once per order, on the tick where the
// remaining time goes from positive to zero. Failed notifications are kept
// for a manual Retry. Orders that arrived and need nothing more are
// dropped on a later tick; observing one again reloads its persisted start
// and never notifies twice.
type Tracker struct {
	store    storage.Store
	notifier Notifier
	counters *metrics.Counters
	now      func() time.Time
	arrivals *event.Subject[Arrival]

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
	stopped bool

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithCounters(c *metrics.Counters) Option {
	return func(t *Tracker) { t.counters = c }
}

func NewTracker(store storage.Store, notifier Notifier, opts ...Option) *Tracker {
	base, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		store:    store,
		notifier: notifier,
		counters: metrics.NewCounters(),
		now:      time.Now,
		arrivals: event.NewSubject[Arrival](),
		entries:  make(map[string]*entry),
		base:     base,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers fn for arrivals that were delivered to the backend.
func (t *Tracker) Subscribe(fn func(Arrival)) (unsubscribe func()) {
	return t.arrivals.Subscribe(fn)
}

// Observe starts tracking w if it is new and returns its status. The start
// instant is read from storage, or written there on first sight.
func (t *Tracker) Observe(ctx context.Context, w Watch) (Status, error) {
	w.OrderID = strings.TrimSpace(w.OrderID)
	if w.OrderID == "" {
		return Status{}, ErrInvalidOrder
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return Status{}, ErrStopped
	}
	if e, ok := t.entries[w.OrderID]; ok {
		if w.UserEmail != "" {
			e.watch.UserEmail = w.UserEmail
		}
		st := t.statusLocked(e, t.now())
		t.mu.Unlock()
		return st, nil
	}
	t.mu.Unlock()

	start := t.loadStart(ctx, w.OrderID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[w.OrderID]; ok {
		return t.statusLocked(e, t.now()), nil
	}
	e := &entry{
		watch:    w,
		start:    start,
		duration: durationFor(w.Delivery),
		state:    NotifyNone,
	}
	now := t.now()
	e.last = remaining(e, now)
	t.entries[w.OrderID] = e
	return t.statusLocked(e, now), nil
}

func (t *Tracker) loadStart(ctx context.Context, orderID string) time.Time {
	log := logger.FromCtx(ctx).With(zap.String("order_id", orderID))
	key := storage.TimerKey(orderID)

	data, err := t.store.Get(ctx, key)
	switch {
	case err == nil:
		if ms, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); perr == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
		log.Warn("malformed timer start, restarting countdown", zap.ByteString("value", data))
	case !errors.Is(err, storage.ErrNotFound):
		log.Warn("failed to read timer start", zap.Error(err))
	}

	start := t.now()
	if err := t.store.Set(ctx, key, []byte(strconv.FormatInt(start.UnixMilli(), 10))); err != nil {
		log.Warn("timer start kept in memory only", zap.Error(err))
	}
	return start
}

func remaining(e *entry, now time.Time) int {
	elapsed := now.Sub(e.start)
	if elapsed < 0 {
		elapsed = 0
	}
	left := int(e.duration/time.Second) - int(elapsed/time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// Remaining returns the seconds left for orderID.
func (t *Tracker) Remaining(orderID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[orderID]
	if !ok {
		return 0, ErrUnknownOrder
	}
	return remaining(e, t.now()), nil
}

func (t *Tracker) Status(orderID string) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[orderID]
	if !ok {
		return Status{}, ErrUnknownOrder
	}
	return t.statusLocked(e, t.now()), nil
}

// Snapshot returns every tracked order, ordered by id.
func (t *Tracker) Snapshot() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	out := make([]Status, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, t.statusLocked(e, now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func (t *Tracker) statusLocked(e *entry, now time.Time) Status {
	left := remaining(e, now)
	total := int(e.duration / time.Second)
	st := Status{
		OrderID:      e.watch.OrderID,
		Label:        labelPickup,
		Duration:     total,
		Remaining:    left,
		Display:      FormatClock(left),
		Progress:     (total - left) * 100 / total,
		Urgent:       left <= urgentBelow,
		Arrived:      left == 0,
		StartedAt:    e.start,
		Notification: e.state,
	}
	if e.watch.Delivery {
		st.Label = labelDelivery
	}
	if e.err != nil {
		st.Error = e.err.Error()
	}
	return st
}

// Tick recomputes every order and starts the arrival notification for
// those that just reached zero. Notifications run on their own goroutines.
func (t *Tracker) Tick() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	now := t.now()
	gen := t.gen
	var due []*entry
	for id, e := range t.entries {
		left := remaining(e, now)
		if e.last == 0 && settled(e) {
			delete(t.entries, id)
			continue
		}
		if e.last > 0 && left == 0 && !e.fired {
			e.fired = true
			if e.watch.UserEmail == "" {
				e.state = NotifySkipped
			} else {
				e.state = NotifyPending
				due = append(due, e)
			}
		}
		e.last = left
	}
	for _, e := range due {
		t.wg.Add(1)
		go t.notify(gen, e.watch)
	}
	t.mu.Unlock()
}

// settled reports whether e has arrived and has no notification left to
// send or retry.
func settled(e *entry) bool {
	switch e.state {
	case NotifySent, NotifySkipped:
		return true
	case NotifyNone:
		return !e.fired
	}
	return false
}

func (t *Tracker) notify(gen uint64, w Watch) {
	defer t.wg.Done()

	ctx, cancel := context.WithTimeout(t.base, notifyTimeout)
	defer cancel()

	a := Arrival{OrderID: w.OrderID, UserEmail: w.UserEmail, Delivery: w.Delivery}
	err := t.notifier.NotifyArrival(ctx, a)
	t.record(gen, a, err)
}

// record stores the outcome of a notification and returns the order's
// status at that moment. ok is false when the result was discarded.
func (t *Tracker) record(gen uint64, a Arrival, err error) (st Status, ok bool) {
	log := logger.L().With(zap.String("order_id", a.OrderID))

	t.mu.Lock()
	e, found := t.entries[a.OrderID]
	if t.stopped || gen != t.gen || !found {
		t.mu.Unlock()
		log.Debug("discarding stale arrival result")
		return Status{}, false
	}
	if err != nil {
		e.state = NotifyFailed
		e.err = err
	} else {
		e.state = NotifySent
		e.err = nil
	}
	st = t.statusLocked(e, t.now())
	t.mu.Unlock()

	if err != nil {
		t.counters.Inc(metrics.NotificationsFailed)
		log.Error("arrival notification failed", zap.Error(err))
		return st, true
	}
	t.counters.Inc(metrics.NotificationsSent)
	log.Info("arrival notification sent", zap.String("delivery", a.DeliveryMode()))
	t.arrivals.Publish(a)
	return st, true
}

// Retry re-sends a failed arrival notification and waits for the result.
func (t *Tracker) Retry(ctx context.Context, orderID string) (Status, error) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return Status{}, ErrStopped
	}
	e, ok := t.entries[orderID]
	if !ok {
		t.mu.Unlock()
		return Status{}, ErrUnknownOrder
	}
	if e.state != NotifyFailed {
		st := t.statusLocked(e, t.now())
		t.mu.Unlock()
		return st, ErrNotRetryable
	}
	e.state = NotifyPending
	gen := t.gen
	a := Arrival{OrderID: e.watch.OrderID, UserEmail: e.watch.UserEmail, Delivery: e.watch.Delivery}
	t.mu.Unlock()

	err := t.notifier.NotifyArrival(ctx, a)
	st, ok := t.record(gen, a, err)
	if !ok {
		return Status{}, ErrStopped
	}
	return st, err
}

// Run ticks once a second until ctx is done, then stops the tracker.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.base.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Stop cancels in-flight notifications, discards their results and waits
// for their goroutines. It is safe to call more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.gen++
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}
