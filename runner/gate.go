package runner

import "context"

// gate is a counting semaphore bounding how many scenarios execute at once.
// A zero limit means unbounded: acquire never blocks. Waiters are served
// from the channel as holders release, so none starves.
type gate struct {
	slots chan struct{}
}

func newGate(limit int) *gate {
	g := &gate{}
	if limit > 0 {
		g.slots = make(chan struct{}, limit)
	}
	return g
}

// acquire blocks until a slot is free or ctx is done.
func (g *gate) acquire(ctx context.Context) error {
	if g.slots == nil {
		return ctx.Err()
	}
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release returns a slot. Must be called exactly once per successful
// acquire; anything else is a programming defect.
func (g *gate) release() {
	if g.slots == nil {
		return
	}
	select {
	case <-g.slots:
	default:
		panic("gate: release without matching acquire")
	}
}
