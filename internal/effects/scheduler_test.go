package effects

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"
)

func TestSchedulerLastSubmittedWins(t *testing.T) {
	s := NewScheduler()

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var mu sync.Mutex
	var applied []int

	apply := func(id int) func(*image.RGBA) {
		return func(*image.RGBA) {
			mu.Lock()
			applied = append(applied, id)
			mu.Unlock()
		}
	}

	s.Submit(func(ctx context.Context) (*image.RGBA, error) {
		close(firstStarted)
		select {
		case <-releaseFirst:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}, apply(1))

	<-firstStarted
	done := make(chan struct{})
	s.Submit(func(ctx context.Context) (*image.RGBA, error) {
		defer close(done)
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	}, apply(2))
	close(releaseFirst)

	<-done
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, id := range applied {
		if id == 1 {
			t.Fatal("superseded pass must not apply its result")
		}
	}
	if len(applied) != 1 || applied[0] != 2 {
		t.Fatalf("applied = %v, want [2]", applied)
	}
}

func TestSchedulerErrorAppliesNil(t *testing.T) {
	s := NewScheduler()
	got := make(chan *image.RGBA, 1)
	s.Submit(func(ctx context.Context) (*image.RGBA, error) {
		return nil, errors.New("decode failed")
	}, func(img *image.RGBA) {
		got <- img
	})

	select {
	case img := <-got:
		if img != nil {
			t.Error("failed pass should apply nil for placeholder substitution")
		}
	case <-time.After(time.Second):
		t.Fatal("apply was never called")
	}
}

func TestSchedulerCancelSuppressesApply(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{})
	appliedCh := make(chan struct{}, 1)

	s.Submit(func(ctx context.Context) (*image.RGBA, error) {
		close(started)
		<-ctx.Done()
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}, func(*image.RGBA) {
		appliedCh <- struct{}{}
	})

	<-started
	s.Cancel()

	select {
	case <-appliedCh:
		t.Fatal("cancelled pass must not apply")
	case <-time.After(50 * time.Millisecond):
	}
}
