package effects

import (
	"context"
	"image"
	"sync"
)

// Scheduler serializes asynchronous pixel-buffer passes so that only the
// most recently submitted request may publish a result. Submitting cancels
// the context of any pass still in flight, and a pass whose sequence number
// is no longer current discards its output: last issued, last applied.
type Scheduler struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewScheduler returns a ready Scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Submit runs work on its own goroutine. apply is invoked with the result
// only if no newer request was submitted in the meantime; a nil image is
// passed when work failed, letting the caller substitute a placeholder.
// Cancelled passes never call apply.
func (s *Scheduler) Submit(work func(ctx context.Context) (*image.RGBA, error), apply func(*image.RGBA)) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.seq++
	id := s.seq
	s.mu.Unlock()

	go func() {
		defer cancel()
		img, err := work(ctx)
		if ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		current := s.seq == id
		s.mu.Unlock()
		if !current {
			return
		}
		if err != nil {
			apply(nil)
			return
		}
		apply(img)
	}()
}

// Cancel stops any in-flight pass without submitting a replacement. Used
// when a manipulation ends and no further writes may land.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.mu.Unlock()
}
