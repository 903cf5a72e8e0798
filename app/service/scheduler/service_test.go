package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	calls atomic.Int32
	err   error

	mu        sync.Mutex
	delivered []string
}

func (f *fakeDispatcher) Deliver(_ context.Context, contactID, message string) error {
	f.calls.Add(1)

	f.mu.Lock()
	f.delivered = append(f.delivered, contactID+": "+message)
	f.mu.Unlock()

	return f.err
}

func TestScheduleAtPastFiresImmediately(t *testing.T) {
	d := &fakeDispatcher{}
	svc := NewWithDispatcher(d)

	id := svc.ScheduleAt("ct_1", "follow up", time.Now().Add(-time.Minute))

	assert.Equal(t, int32(1), d.calls.Load())
	assert.Equal(t, StatusSent, svc.status(id))
	assert.Empty(t, svc.Pending())
}

func TestScheduleAtFutureFiresOnce(t *testing.T) {
	d := &fakeDispatcher{}
	svc := NewWithDispatcher(d)

	id := svc.ScheduleAt("ct_1", "follow up", time.Now().Add(20*time.Millisecond))

	require.Len(t, svc.Pending(), 1)
	assert.Equal(t, StatusPending, svc.status(id))

	assert.Eventually(t, func() bool {
		return d.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StatusSent, svc.status(id))
}

func TestCancelPending(t *testing.T) {
	d := &fakeDispatcher{}
	svc := NewWithDispatcher(d)

	id := svc.ScheduleAt("ct_1", "follow up", time.Now().Add(time.Hour))

	assert.True(t, svc.Cancel(id))
	assert.Equal(t, StatusCancelled, svc.status(id))
	assert.Empty(t, svc.Pending())

	// Cancel after cancel, and cancel of unknown ids, are no-ops.
	assert.False(t, svc.Cancel(id))
	assert.False(t, svc.Cancel("nope"))
	assert.Equal(t, int32(0), d.calls.Load())
}

func TestCancelAfterFireReturnsFalse(t *testing.T) {
	d := &fakeDispatcher{}
	svc := NewWithDispatcher(d)

	id := svc.ScheduleAt("ct_1", "follow up", time.Now())

	assert.False(t, svc.Cancel(id))
	assert.Equal(t, int32(1), d.calls.Load())
}

func TestFireExactlyOnceUnderConcurrentSweeps(t *testing.T) {
	d := &fakeDispatcher{}
	svc := NewWithDispatcher(d)

	id := svc.ScheduleAt("ct_1", "follow up", time.Now().Add(10*time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				svc.sweep()
			}
		}()
	}

	// Racing manual fires against the timer must not double-deliver either.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.fire(id)
		}()
	}

	wg.Wait()

	assert.Eventually(t, func() bool {
		return d.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), d.calls.Load())
}

func TestFailedDispatchStillMarksSent(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("transport down")}
	svc := NewWithDispatcher(d)

	id := svc.ScheduleAt("ct_1", "follow up", time.Now())

	assert.Equal(t, int32(1), d.calls.Load())
	assert.Equal(t, StatusSent, svc.status(id))
	assert.False(t, svc.Cancel(id))
}

func TestSweepRemovesTerminalOnly(t *testing.T) {
	d := &fakeDispatcher{}
	svc := NewWithDispatcher(d)

	fired := svc.ScheduleAt("ct_1", "a", time.Now())
	cancelled := svc.ScheduleAt("ct_2", "b", time.Now().Add(time.Hour))
	pending := svc.ScheduleAt("ct_3", "c", time.Now().Add(time.Hour))

	svc.Cancel(cancelled)

	assert.Equal(t, 2, svc.sweep())

	assert.Equal(t, Status(""), svc.status(fired))
	assert.Equal(t, Status(""), svc.status(cancelled))
	assert.Equal(t, StatusPending, svc.status(pending))
	assert.Len(t, svc.Pending(), 1)
}

// status returns the live-set status for id, empty when swept.
func (s *Service) status(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return ""
	}

	return r.status
}
