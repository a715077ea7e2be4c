package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamboofin/bamboo_portal/internal/comparator"
	"github.com/bamboofin/bamboo_portal/internal/session"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshBanks(context.Context) (int, error) {
	r.calls.Add(1)
	return 4, r.err
}

type countingValidator struct {
	calls atomic.Int32
}

func (v *countingValidator) RevalidateAll(context.Context) (session.Revalidation, error) {
	v.calls.Add(1)
	return session.Revalidation{Checked: 2, Dropped: 1}, nil
}

func TestBankSyncWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	r := &countingRefresher{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewBankSyncWorker(r, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestBankSyncWorker_ErrorKeepsRunning(t *testing.T) {
	r := &countingRefresher{err: errors.New("bamboo down")}
	w := NewBankSyncWorker(r, time.Hour)
	w.run(context.Background())
	w.run(context.Background())
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestSessionCheckWorker_WaitsOneInterval(t *testing.T) {
	v := &countingValidator{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewSessionCheckWorker(v, 20*time.Millisecond).Start(ctx)

	assert.Equal(t, int32(0), v.calls.Load())
	assert.Eventually(t, func() bool { return v.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestWorkspaceSweepWorker_DropsIdleWorkspaces(t *testing.T) {
	reg := comparator.NewRegistry(time.Minute)
	reg.Get("ws-1")
	reg.Get("ws-2")

	w := NewWorkspaceSweepWorker(reg, time.Hour)
	w.run()
	assert.Equal(t, 2, reg.Len())

	w.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	w.run()
	assert.Equal(t, 0, reg.Len())
}
