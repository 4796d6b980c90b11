package guard

import (
	"context"
	"testing"
	"time"

	"github.com/Denis-69/CrashRollbackGuard/nvs"
	"github.com/Denis-69/CrashRollbackGuard/platform"
	"github.com/Denis-69/CrashRollbackGuard/platform/sim"
)

func TestCleanBootIsNotSuspicious(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a"))
	p.SetResetReason(platform.ResetPowerOn)
	g := New(p, nvs.NewMemOpener(nil))

	if got := g.BeginEarly(context.Background()); got != None {
		t.Fatalf("BeginEarly = %v, want None", got)
	}
	if got := g.FailCount(); got != 0 {
		t.Errorf("FailCount = %d, want 0", got)
	}
}

func TestTwoCrashesStayUnderLimit(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a"))
	p.SetResetReason(platform.ResetPanic)
	g := New(p, nvs.NewMemOpener(nil), WithFailLimit(3))

	for i := 0; i < 2; i++ {
		if got := g.BeginEarly(context.Background()); got != None {
			t.Fatalf("boot %d: BeginEarly = %v, want None", i+1, got)
		}
	}
	if got := g.FailCount(); got != 2 {
		t.Errorf("FailCount = %d, want 2", got)
	}
}

func TestThirdCrashTriggersRollback(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a", "app_b"))
	p.SetRunning("app_b")
	opener := nvs.NewMemOpener(nil)
	g := New(p, opener, WithFailLimit(3))

	if !g.SaveCurrentAsPreviousSlot(context.Background()) {
		t.Fatal("SaveCurrentAsPreviousSlot failed")
	}

	p.SetRunning("app_a")
	p.SetResetReason(platform.ResetPanic)

	var last Decision
	for i := 0; i < 3; i++ {
		last = g.BeginEarly(context.Background())
	}
	if last != RollbackToPrev {
		t.Fatalf("3rd crash Decision = %v, want RollbackToPrev", last)
	}
	if got := p.RunningPartition().Label(); got != "app_b" {
		t.Errorf("running after rollback = %q, want app_b", got)
	}
	if p.RestartCount() != 1 {
		t.Errorf("RestartCount = %d, want 1", p.RestartCount())
	}
	// fails is not reset at switch time (§4.5 step 5 reserves that for
	// re-entry), so it still holds the count that triggered the rollback.
	if got := g.FailCount(); got != 3 {
		t.Errorf("FailCount after rollback = %d, want 3", got)
	}

	// The next boot re-enters app_b and recognizes the pending record
	// against the now-running slot, which is what actually resets fails.
	if got := g.BeginEarly(context.Background()); got != None {
		t.Fatalf("re-entry boot Decision = %v, want None", got)
	}
	if got := g.FailCount(); got != 0 {
		t.Errorf("FailCount after re-entry = %d, want 0", got)
	}
}

func TestRollbackGuardStopsSecondRollback(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a", "app_b"))
	p.SetRunning("app_b")
	opener := nvs.NewMemOpener(nil)
	g := New(p, opener, WithFailLimit(2), WithMaxRollbackAttempts(1))

	g.SaveCurrentAsPreviousSlot(context.Background())
	p.SetRunning("app_a")
	p.SetResetReason(platform.ResetPanic)

	var d Decision
	for i := 0; i < 2; i++ {
		d = g.BeginEarly(context.Background())
	}
	if d != RollbackToPrev {
		t.Fatalf("first crash-loop Decision = %v, want RollbackToPrev", d)
	}

	// The first boot on app_b re-enters against the pending rollback record
	// and resets fails; it takes failLimit more genuine crashes after that
	// for the guard to reconsider rollback, and this time it must refuse
	// because maxRollbackAttempts is exhausted.
	p.SetResetReason(platform.ResetPanic)
	for i := 0; i < 3; i++ {
		d = g.BeginEarly(context.Background())
	}
	if d != SkippedNoPrev {
		t.Fatalf("second crash-loop Decision = %v, want SkippedNoPrev", d)
	}
	if p.RestartCount() != 1 {
		t.Errorf("RestartCount = %d, want 1 (no second rollback restart)", p.RestartCount())
	}
}

func TestControlledRestartIsNeverTreatedAsCrash(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a"))
	opener := nvs.NewMemOpener(nil)
	g := New(p, opener, WithFailLimit(1))

	g.ArmControlledRestart(context.Background())
	if p.RestartCount() != 1 {
		t.Fatalf("RestartCount = %d, want 1", p.RestartCount())
	}

	// Even if the platform (oddly) reports a panic as the reset cause, a
	// recognized controlled-restart record must win.
	p.SetResetReason(platform.ResetPanic)
	if got := g.BeginEarly(context.Background()); got != None {
		t.Fatalf("BeginEarly after controlled restart = %v, want None", got)
	}
	if got := g.FailCount(); got != 0 {
		t.Errorf("FailCount = %d, want 0", got)
	}
}

func TestCorruptPreviousSlotFallsThrough(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a", "app_b"))
	p.SetRunning("app_b")
	opener := nvs.NewMemOpener(nil)
	g := New(p, opener, WithFailLimit(1))

	g.SaveCurrentAsPreviousSlot(context.Background())

	store, err := opener.Open("crg", false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.PutU32("prevCrc", 0xDEADBEEF)
	store.Close()

	p.SetRunning("app_a")
	p.SetResetReason(platform.ResetPanic)

	if got := g.BeginEarly(context.Background()); got != SkippedNoPrev {
		t.Fatalf("Decision = %v, want SkippedNoPrev", got)
	}
	if _, ok := g.PreviousSlot(context.Background()); ok {
		t.Error("PreviousSlot still reports a value after corruption")
	}
}

func TestMarkHealthyNowIsIdempotent(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a"))
	p.SetOTAState("app_a", platform.OTAPendingVerify)
	g := New(p, nvs.NewMemOpener(nil))

	g.BeginEarly(context.Background())
	if !g.PendingVerifyState() {
		t.Fatal("PendingVerifyState = false, want true")
	}

	g.MarkHealthyNow(context.Background())
	h, _ := p.FindPartitionByLabel("app_a")
	if got := p.OTAStateOf(h); got != platform.OTAValid {
		t.Fatalf("OTA state after MarkHealthyNow = %v, want valid", got)
	}

	// A second call must be a no-op: it must not error or panic, and
	// observable state must be unchanged.
	g.MarkHealthyNow(context.Background())
	if got := p.OTAStateOf(h); got != platform.OTAValid {
		t.Fatalf("OTA state after 2nd MarkHealthyNow = %v, want valid", got)
	}
}

func TestLoopTickAutoConfirmsAfterStableTime(t *testing.T) {
	p := sim.New(sim.WithPartitions("app_a"))
	g := New(p, nvs.NewMemOpener(nil), WithStableTime(1000*time.Millisecond))

	g.BeginEarly(context.Background())
	g.LoopTick(context.Background())
	if g.healthyMarked {
		t.Fatal("should not auto-confirm before stable time elapses")
	}

	p.Advance(1000)
	g.LoopTick(context.Background())
	if !g.healthyMarked {
		t.Fatal("LoopTick did not auto-confirm after stable time elapsed")
	}
}
