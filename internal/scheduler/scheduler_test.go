package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/controllers"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeSyncer counts passes and can fail or block on demand
type fakeSyncer struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeSyncer) SyncAll(ctx context.Context) (controllers.Result, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return controllers.Result{}, f.err
	}
	return controllers.Result{Processed: 1}, nil
}

func TestSchedulerRunsImmediatelyAndOnInterval(t *testing.T) {
	syncer := &fakeSyncer{}
	sched := NewScheduler(syncer, 50*time.Millisecond, testLogger())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer sched.Stop()

	deadline := time.After(2 * time.Second)
	for syncer.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 3 passes, got %d", syncer.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerSurvivesFailedPasses(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("jellyfin unreachable")}
	sched := NewScheduler(syncer, 50*time.Millisecond, testLogger())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer sched.Stop()

	deadline := time.After(2 * time.Second)
	for syncer.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("Ticks stopped after a failed pass, got %d calls", syncer.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerStopWaitsForInFlightPass(t *testing.T) {
	syncer := &fakeSyncer{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	sched := NewScheduler(syncer, time.Hour, testLogger())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	<-syncer.started

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a pass was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(syncer.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the pass finished")
	}
}

func TestSchedulerStopPreventsNewPasses(t *testing.T) {
	syncer := &fakeSyncer{}
	sched := NewScheduler(syncer, 50*time.Millisecond, testLogger())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	sched.Stop()

	settled := syncer.calls.Load()
	time.Sleep(200 * time.Millisecond)
	if got := syncer.calls.Load(); got != settled {
		t.Errorf("Passes kept running after Stop: %d then %d", settled, got)
	}
}
