package routestate

import (
	"context"
	"testing"
	"time"

	"github.com/genricoloni/routewatch/internal/dispatch"
	"github.com/genricoloni/routewatch/internal/domain"
	"go.uber.org/zap"
)

// queryingDelegate asks the monitor for the wired state from inside the callback
type queryingDelegate struct {
	monitor *Monitor
	wired   chan bool
}

func (d *queryingDelegate) OnStateChanged(domain.RouteState) {
	d.wired <- d.monitor.IsWiredPlaybackActive()
}

func (d *queryingDelegate) OnAvailabilityChanged(bool) {}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("Timeout: observer did not report back")
		var zero T
		return zero
	}
}

func TestMonitor_CallbackCanQueryMonitor(t *testing.T) {
	probe := &staticProbe{surfaces: []domain.Surface{primary, mirror}}
	mon, loop := newTestMonitor(t, probe)

	states := make(chan domain.RouteState, 4)
	wired := make(chan bool, 4)
	mon.SetOnStateChange(func(domain.RouteState) {
		states <- mon.CurrentState()
		wired <- mon.IsWiredPlaybackActive()
	})

	mon.HandleNotification(domain.Notification{Source: "test"})

	if got := receive(t, states); got != domain.RouteOff {
		t.Errorf("CurrentState from callback: expected RouteOff, got %s", got)
	}
	if !receive(t, wired) {
		t.Error("IsWiredPlaybackActive from callback: expected true for a mirrored local display")
	}

	// The loop keeps serving notifications afterwards
	mon.HandleNotification(domain.Notification{Source: "test"})
	receive(t, states)
	receive(t, wired)
	flush(t, loop)
}

func TestMonitor_DelegateCanQueryMonitor(t *testing.T) {
	probe := &staticProbe{external: true, surfaces: []domain.Surface{primary}}
	mon, _ := newTestMonitor(t, probe)

	d := &queryingDelegate{monitor: mon, wired: make(chan bool, 1)}
	mon.SetDelegate(d)

	mon.HandleNotification(domain.Notification{Source: "test"})

	if receive(t, d.wired) {
		t.Error("Expected wired playback to be false while external-only")
	}
}

func TestMonitor_CallbackCanHandleNotifications(t *testing.T) {
	probe := &staticProbe{}
	mon, _ := newTestMonitor(t, probe)

	calls := make(chan struct{}, 100)
	count := 0
	mon.SetOnStateChange(func(domain.RouteState) {
		count++
		if count < 40 {
			mon.HandleNotification(domain.Notification{Source: "callback"})
		}
		calls <- struct{}{}
	})

	mon.HandleNotification(domain.Notification{Source: "test"})

	// Each callback posts the next notification from the loop itself
	for i := 0; i < 40; i++ {
		receive(t, calls)
	}
}

func TestMonitor_RegisterBeforeLoopRuns(t *testing.T) {
	loop := dispatch.NewLoop(zap.NewNop(), 16)
	mon := NewMonitor(zap.NewNop(), loop, &staticProbe{external: true})

	d := &recordingDelegate{}
	reg := mon.SetDelegate(d)
	mon.HandleNotification(domain.Notification{Source: "test"})

	if got := mon.CurrentState(); got != domain.ExternalPlaybackOnly {
		t.Errorf("Expected held-back notification to be handled first, got %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		<-loop.Done()
	}()
	go func() {
		_ = loop.Run(ctx)
	}()

	mon.HandleNotification(domain.Notification{Source: "test"})
	flush(t, loop)

	if len(d.states) != 2 {
		t.Fatalf("Expected delegate to be called twice, got %d", len(d.states))
	}
	for i, s := range d.states {
		if s != domain.ExternalPlaybackOnly {
			t.Errorf("Call %d: expected external-only, got %s", i, s)
		}
	}
	if len(d.availability) != 2 {
		t.Errorf("Expected 2 availability calls, got %d", len(d.availability))
	}

	reg.Unregister()
}

func TestMonitor_CloseBeforeLoopRuns(t *testing.T) {
	loop := dispatch.NewLoop(zap.NewNop(), 0)
	mon := NewMonitor(zap.NewNop(), loop, &staticProbe{})
	mon.SetOnStateChange(func(domain.RouteState) {})

	done := make(chan struct{})
	go func() {
		mon.Close()
		close(done)
	}()

	receive(t, done)
}
