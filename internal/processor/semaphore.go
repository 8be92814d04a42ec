package processor

import "context"

// runSlots bounds how many pipeline runs execute at once
type runSlots struct {
	ch chan struct{}
}

func newRunSlots(n int) *runSlots {
	if n <= 0 {
		n = 1
	}
	return &runSlots{ch: make(chan struct{}, n)}
}

// acquire blocks until a slot is free or ctx is done
func (s *runSlots) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *runSlots) release() { <-s.ch }

// busy reports slots in use and the total
func (s *runSlots) busy() (int, int) { return len(s.ch), cap(s.ch) }
