package bus

import (
	"log"
	"sync"
)

// Broker is the native same-origin channel for tabs living in one
// process: a plain in-memory fan-out. Delivery is asynchronous per
// subscriber so a slow receiver cannot stall the publisher.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Envelope
	nextID int
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Envelope)}
}

func (b *Broker) Publish(env Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- env:
		default:
			// Subscriber is backed up; drop rather than block. The
			// autosave/reload path reconverges the stores.
			log.Printf("bus: broker subscriber %d blocked, dropping %s", id, env.Type)
		}
	}
	return nil
}

func (b *Broker) Subscribe(fn func(Envelope)) (cancel func()) {
	ch := make(chan Envelope, 16)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case env, ok := <-ch:
				if !ok {
					return
				}
				fn(env)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(done)
		})
	}
}

func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
