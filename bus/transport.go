package bus

import (
	"log"
)

// Transport delivers envelopes between tabs. Subscribers must tolerate
// duplicate delivery and their own envelopes coming back; both are
// filtered by the merge layer, not here.
type Transport interface {
	Publish(env Envelope) error
	Subscribe(fn func(Envelope)) (cancel func())
	Close()
}

// MultiTransport publishes on every backend in parallel for resilience
// (native channel plus storage fallback, the way the original dual
// path runs). A subscriber hears from all of them.
type MultiTransport struct {
	transports []Transport
}

func NewMultiTransport(transports ...Transport) *MultiTransport {
	return &MultiTransport{transports: transports}
}

func (m *MultiTransport) Publish(env Envelope) error {
	var firstErr error
	for _, t := range m.transports {
		if err := t.Publish(env); err != nil {
			log.Printf("bus: publish on %T failed: %v", t, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *MultiTransport) Subscribe(fn func(Envelope)) (cancel func()) {
	cancels := make([]func(), 0, len(m.transports))
	for _, t := range m.transports {
		cancels = append(cancels, t.Subscribe(fn))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

func (m *MultiTransport) Close() {
	for _, t := range m.transports {
		t.Close()
	}
}
