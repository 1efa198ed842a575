package viewport

import (
	"math"
	"testing"
	"time"
)

type mockTarget struct {
	dispW, dispH int
	bufW, bufH   int

	setSizeCalls int
	aspects      []float32
	renders      int
}

func makeMockTarget(dispW, dispH, bufW, bufH int) *mockTarget {
	return &mockTarget{dispW: dispW, dispH: dispH, bufW: bufW, bufH: bufH}
}

func (mt *mockTarget) DisplaySize() (int, int) {
	return mt.dispW, mt.dispH
}

func (mt *mockTarget) BackbufferSize() (int, int) {
	return mt.bufW, mt.bufH
}

func (mt *mockTarget) SetBackbufferSize(w, h int) {
	mt.setSizeCalls++
	mt.bufW, mt.bufH = w, h
}

func (mt *mockTarget) UpdateProjection(aspect float32) {
	mt.aspects = append(mt.aspects, aspect)
}

func (mt *mockTarget) RenderFrame() {
	mt.renders++
}

type countingScheduler struct {
	*StepScheduler
	calls int
}

func (cs *countingScheduler) ScheduleNextFrame(cb FrameCallback) {
	cs.calls++
	cs.StepScheduler.ScheduleNextFrame(cb)
}

func TestReconcileSizeIdempotence(t *testing.T) {
	target := makeMockTarget(640, 480, 300, 150)
	d := NewDriver(target, NewStepScheduler())

	if !d.ReconcileSize() {
		t.Fatal("expected first reconciliation to resize the backbuffer")
	}
	if d.ReconcileSize() {
		t.Fatal("expected second reconciliation to be a no-op")
	}
	if target.setSizeCalls != 1 {
		t.Fatalf("expected SetBackbufferSize to be called once; got %d", target.setSizeCalls)
	}
	if target.bufW != 640 || target.bufH != 480 {
		t.Fatalf("expected backbuffer to stay at 640x480; got %dx%d", target.bufW, target.bufH)
	}
}

func TestReconcileSizeConvergence(t *testing.T) {
	type spec struct {
		dispW, dispH int
	}
	specs := []spec{
		{1, 1},
		{1920, 1080},
		{300, 150},
		{0, 600},
		{7, 0},
	}

	target := makeMockTarget(0, 0, 300, 150)
	d := NewDriver(target, NewStepScheduler())
	for index, s := range specs {
		target.dispW, target.dispH = s.dispW, s.dispH
		d.ReconcileSize()
		if target.bufW != s.dispW || target.bufH != s.dispH {
			t.Fatalf("[spec %d] expected backbuffer to be %dx%d; got %dx%d", index, s.dispW, s.dispH, target.bufW, target.bufH)
		}
	}
}

func TestConditionalProjectionUpdate(t *testing.T) {
	target := makeMockTarget(800, 600, 300, 150)
	sched := NewStepScheduler()
	d := NewDriver(target, sched)
	d.Start(nil)

	sched.Step(0)
	if len(target.aspects) != 1 {
		t.Fatalf("expected 1 projection update after a resizing frame; got %d", len(target.aspects))
	}
	if exp := float32(800) / float32(600); target.aspects[0] != exp {
		t.Fatalf("expected aspect ratio %f; got %f", exp, target.aspects[0])
	}

	for i := 1; i <= 3; i++ {
		sched.Step(time.Duration(i) * time.Millisecond)
	}
	if len(target.aspects) != 1 {
		t.Fatalf("expected no projection updates on unchanged frames; got %d updates", len(target.aspects))
	}
}

func TestDegenerateDisplaySize(t *testing.T) {
	target := makeMockTarget(0, 0, 300, 150)
	sched := NewStepScheduler()
	d := NewDriver(target, sched)

	if !d.ReconcileSize() {
		t.Fatal("expected transition to 0x0 to resize the backbuffer")
	}
	if d.ReconcileSize() {
		t.Fatal("expected 0x0 display to be reconciled exactly once")
	}
	if target.bufW != 0 || target.bufH != 0 {
		t.Fatalf("expected backbuffer to be 0x0; got %dx%d", target.bufW, target.bufH)
	}

	// A full frame with a degenerate size still renders and propagates the
	// aspect ratio untouched.
	target.bufW, target.bufH = 10, 10
	d.Start(nil)
	sched.Step(0)
	if target.renders != 1 {
		t.Fatalf("expected 1 rendered frame; got %d", target.renders)
	}
	if len(target.aspects) != 1 || !math.IsNaN(float64(target.aspects[0])) {
		t.Fatalf("expected a single NaN aspect update; got %v", target.aspects)
	}
}

func TestFrameCadence(t *testing.T) {
	target := makeMockTarget(300, 150, 300, 150)
	sched := &countingScheduler{StepScheduler: NewStepScheduler()}
	d := NewDriver(target, sched)

	var timestamps []time.Duration
	d.Start(func(ts time.Duration) {
		timestamps = append(timestamps, ts)
	})

	const numTicks = 25
	for i := 0; i < numTicks; i++ {
		if !sched.Step(time.Duration(i) * 16 * time.Millisecond) {
			t.Fatalf("expected a pending frame before tick %d", i)
		}
	}

	if target.renders != numTicks {
		t.Fatalf("expected %d render submissions; got %d", numTicks, target.renders)
	}
	if sched.calls != numTicks+1 {
		t.Fatalf("expected %d ScheduleNextFrame calls; got %d", numTicks+1, sched.calls)
	}
	if len(timestamps) != numTicks {
		t.Fatalf("expected frame hook to run %d times; got %d", numTicks, len(timestamps))
	}

	stats := d.Stats()
	if stats.Frames != numTicks || stats.Resizes != 0 {
		t.Fatalf("expected stats to report %d frames and 0 resizes; got %+v", numTicks, stats)
	}
	if stats.LastFrame != 24*16*time.Millisecond {
		t.Fatalf("expected last frame timestamp %s; got %s", 24*16*time.Millisecond, stats.LastFrame)
	}
}

func TestResizeBetweenFrames(t *testing.T) {
	target := makeMockTarget(800, 600, 300, 150)
	sched := NewStepScheduler()
	d := NewDriver(target, sched)
	d.Start(nil)

	for frame := 1; frame <= 5; frame++ {
		sched.Step(time.Duration(frame) * time.Millisecond)
		if target.bufW != 800 || target.bufH != 600 {
			t.Fatalf("[frame %d] expected backbuffer 800x600; got %dx%d", frame, target.bufW, target.bufH)
		}
		if len(target.aspects) != 1 {
			t.Fatalf("[frame %d] expected only the first frame to update the projection; got %d updates", frame, len(target.aspects))
		}
	}

	target.dispW, target.dispH = 1024, 768
	sched.Step(6 * time.Millisecond)

	if target.bufW != 1024 || target.bufH != 768 {
		t.Fatalf("expected backbuffer 1024x768 after frame 6; got %dx%d", target.bufW, target.bufH)
	}
	if len(target.aspects) != 2 {
		t.Fatalf("expected exactly one extra projection update on frame 6; got %d total", len(target.aspects))
	}
	if exp := float32(1024) / float32(768); target.aspects[1] != exp {
		t.Fatalf("expected aspect ratio %f; got %f", exp, target.aspects[1])
	}
	if stats := d.Stats(); stats.Resizes != 2 || stats.BackbufferW != 1024 {
		t.Fatalf("expected 2 resizes ending at 1024 px wide; got %+v", stats)
	}
}

func TestStopSuppressesNextFrame(t *testing.T) {
	target := makeMockTarget(300, 150, 300, 150)
	sched := NewStepScheduler()
	d := NewDriver(target, sched)
	d.Start(func(ts time.Duration) {
		if ts == 2 {
			d.Stop()
		}
	})

	for ts := time.Duration(0); sched.Step(ts); ts++ {
	}

	if target.renders != 3 {
		t.Fatalf("expected the stopping frame to complete for a total of 3 renders; got %d", target.renders)
	}
	if !d.Stopped() || sched.Pending() {
		t.Fatal("expected driver to be stopped with no pending frame")
	}
}

func TestStatsFPS(t *testing.T) {
	stats := Stats{Frames: 61, FirstFrame: 0, LastFrame: time.Second}
	if fps := stats.FPS(); math.Abs(fps-60) > 1e-9 {
		t.Fatalf("expected 60 fps; got %f", fps)
	}
	if fps := (Stats{Frames: 1}).FPS(); fps != 0 {
		t.Fatalf("expected 0 fps for a single frame; got %f", fps)
	}
}
