package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	CartMutations       = "cart_mutations"
	OrdersPlaced        = "orders_placed"
	InstalmentPayments  = "instalment_payments"
	NotificationsSent   = "notifications_sent"
	NotificationsFailed = "notifications_failed"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Counters is a named set of counters created on first use.
type Counters struct {
	mu  sync.RWMutex
	set map[string]*Counter
}

func NewCounters() *Counters {
	return &Counters{set: make(map[string]*Counter)}
}

func (c *Counters) Get(name string) *Counter {
	c.mu.RLock()
	ctr, ok := c.set[name]
	c.mu.RUnlock()
	if ok {
		return ctr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctr, ok = c.set[name]; !ok {
		ctr = &Counter{}
		c.set[name] = ctr
	}
	return ctr
}

func (c *Counters) Inc(name string) {
	c.Get(name).Inc()
}

func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]uint64, len(c.set))
	for name, ctr := range c.set {
		out[name] = ctr.Load()
	}
	return out
}

func (c *Counters) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.set))
	for name := range c.set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
