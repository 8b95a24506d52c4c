package progress

import "sync"

// Event is one item delivered by a Feed. Exactly one field is set.
type Event struct {
	Update *Update
	Log    *Log
	Result *Result
}

// Feed hands events from one producer (the transfer) to one consumer (the
// renderer) without ever blocking the producer.
//
// Intermediate updates share a single slot: a newer one replaces an older
// one the consumer has not taken yet. Final updates, logs and results are
// queued and never dropped. Delivery order matches publish order.
type Feed struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event // must-deliver events, oldest first
	latest *Update // newest undelivered intermediate update; newer than queue
	closed bool
}

// NewFeed returns an open Feed.
func NewFeed() *Feed {
	f := &Feed{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Update implements Reporter.
func (f *Feed) Update(u Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if u.Final() {
		// A pending intermediate update is older than u.
		f.latest = nil
		f.queue = append(f.queue, Event{Update: &u})
	} else {
		f.latest = &u
	}
	f.cond.Signal()
}

// Log implements Reporter.
func (f *Feed) Log(l Log) {
	f.push(Event{Log: &l})
}

// Result implements Reporter.
func (f *Feed) Result(r Result) {
	f.push(Event{Result: &r})
}

func (f *Feed) push(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.latest = nil
	f.queue = append(f.queue, ev)
	f.cond.Signal()
}

// Next blocks until an event is available. It returns false once the feed is
// closed and drained.
func (f *Feed) Next() (Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.queue) == 0 && f.latest == nil && !f.closed {
		f.cond.Wait()
	}
	if len(f.queue) > 0 {
		ev := f.queue[0]
		f.queue = f.queue[1:]
		return ev, true
	}
	if f.latest != nil {
		u := f.latest
		f.latest = nil
		return Event{Update: u}, true
	}
	return Event{}, false
}

// Close stops accepting events and wakes the consumer. Already queued events
// are still delivered.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}

// Discard drops every event not yet delivered.
func (f *Feed) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = nil
	f.latest = nil
}
