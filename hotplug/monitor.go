package hotplug

import (
	"context"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType int

const (
	Attached EventType = iota
	Detached
)

func (t EventType) String() string {
	if t == Attached {
		return "attached"
	}
	return "detached"
}

// Event reports one device identity appearing or disappearing between
// two poll ticks. Events are immutable values.
type Event struct {
	Type   EventType
	Device string
}

// Lister enumerates the device identities currently reachable. One
// platform implementation exists per host; tests supply their own.
type Lister interface {
	List() ([]string, error)
}

const DEFAULT_INTERVAL = 2 * time.Second

// Monitor polls the lister on a fixed interval and fans out attach and
// detach events. Listener slowness never delays a tick: every listener
// gets its own buffered channel and events are dropped, not awaited,
// when a listener falls behind.
type Monitor struct {
	lister   Lister
	interval time.Duration

	mu       sync.Mutex
	subs     []*subscriber
	subWG    sync.WaitGroup
	cancel   context.CancelFunc
	loopDone chan struct{}
	previous []string
}

type subscriber struct {
	ch   chan Event
	stop chan struct{}
}

func New(lister Lister, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DEFAULT_INTERVAL
	}
	return &Monitor{
		lister:   lister,
		interval: interval,
	}
}

// Subscribe registers a listener. Must be called before Start.
func (m *Monitor) Subscribe(fn func(Event)) {
	sub := &subscriber{
		ch:   make(chan Event, 16),
		stop: make(chan struct{}),
	}

	m.subWG.Add(1)
	go func() {
		defer m.subWG.Done()
		for {
			select {
			case <-sub.stop:
				return
			case ev := <-sub.ch:
				fn(ev)
			}
		}
	}()

	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
}

// Start begins polling. The first enumeration establishes the baseline
// snapshot; only changes relative to it are reported.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	snapshot, err := m.lister.List()
	if err != nil {
		log.Warnf("initial device enumeration failed: %v", err)
		snapshot = nil
	}
	slices.Sort(snapshot)
	m.previous = snapshot

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.loopDone = make(chan struct{})
	go m.loop(ctx)
}

// Stop halts polling and listener dispatch. After Stop returns no
// further enumeration happens and no listener receives another event;
// events still queued for a slow listener are discarded.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	loopDone := m.loopDone
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-loopDone

	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	for _, sub := range subs {
		close(sub.stop)
	}
	m.subWG.Wait()
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.loopDone)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := m.lister.List()
		if err != nil {
			// A failed tick is "no change"; the next tick will catch up.
			log.Debugf("device enumeration failed: %v", err)
			continue
		}
		slices.Sort(current)

		for _, ev := range diff(m.previous, current) {
			log.WithFields(log.Fields{
				"device": ev.Device,
				"event":  ev.Type.String(),
			}).Info("device presence changed")
			m.dispatch(ev)
		}
		m.previous = current
	}
}

func (m *Monitor) dispatch(ev Event) {
	m.mu.Lock()
	subs := m.subs
	m.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- ev:
		default:
			// Listener is not keeping up; dropping beats stalling the
			// poll loop.
			log.Warnf("dropping %s event for %s: listener queue full", ev.Type, ev.Device)
		}
	}
}

// diff emits Detached for identities only in prev and Attached for
// identities only in cur. Both slices must be sorted.
func diff(prev, cur []string) []Event {
	var events []Event
	i, j := 0, 0
	for i < len(prev) || j < len(cur) {
		switch {
		case i >= len(prev):
			events = append(events, Event{Type: Attached, Device: cur[j]})
			j++
		case j >= len(cur):
			events = append(events, Event{Type: Detached, Device: prev[i]})
			i++
		case prev[i] == cur[j]:
			i++
			j++
		case prev[i] < cur[j]:
			events = append(events, Event{Type: Detached, Device: prev[i]})
			i++
		default:
			events = append(events, Event{Type: Attached, Device: cur[j]})
			j++
		}
	}
	return events
}
