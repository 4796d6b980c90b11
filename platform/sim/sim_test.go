package sim

import (
	"testing"

	"github.com/Denis-69/CrashRollbackGuard/platform"
)

func TestNewSelectsFirstPartitionAsRunning(t *testing.T) {
	p := New(WithPartitions("app_b", "app_a"))
	if got := p.RunningPartition().Label(); got != "app_a" {
		t.Errorf("running = %q, want app_a (sorted first)", got)
	}
}

func TestSetBootPartitionAndRestart(t *testing.T) {
	p := New(WithPartitions("app_a", "app_b"))
	h, ok := p.FindPartitionByLabel("app_b")
	if !ok {
		t.Fatal("app_b not found")
	}
	if err := p.SetBootPartition(h); err != nil {
		t.Fatalf("SetBootPartition: %v", err)
	}
	if got := p.RunningPartition().Label(); got != "app_a" {
		t.Fatalf("running changed before Restart: got %q", got)
	}
	p.Restart()
	if got := p.RunningPartition().Label(); got != "app_b" {
		t.Errorf("running after Restart = %q, want app_b", got)
	}
	if p.RestartCount() != 1 {
		t.Errorf("RestartCount = %d, want 1", p.RestartCount())
	}
}

func TestSetBootPartitionUnknownFails(t *testing.T) {
	p := New(WithPartitions("app_a"))
	if err := p.SetBootPartition(Handle("ghost")); err == nil {
		t.Error("SetBootPartition(ghost) succeeded, want error")
	}
}

func TestFailBootSwitchFor(t *testing.T) {
	p := New(WithPartitions("app_a", "app_b"))
	p.FailBootSwitchFor("app_b")
	h, _ := p.FindPartitionByLabel("app_b")
	if err := p.SetBootPartition(h); err == nil {
		t.Error("SetBootPartition succeeded despite FailBootSwitchFor")
	}
}

func TestMarkValidCancelRollback(t *testing.T) {
	p := New(WithPartitions("app_a"))
	p.SetOTAState("app_a", platform.OTAPendingVerify)
	if err := p.MarkValidCancelRollback(); err != nil {
		t.Fatalf("MarkValidCancelRollback: %v", err)
	}
	h, _ := p.FindPartitionByLabel("app_a")
	if got := p.OTAStateOf(h); got != platform.OTAValid {
		t.Errorf("state after mark valid = %v, want valid", got)
	}
}

func TestAdvanceWrapsAtUint32Boundary(t *testing.T) {
	p := New()
	p.Advance(^uint32(0))
	p.Advance(2)
	if got := p.MonotonicMillis(); got != 1 {
		t.Errorf("millis after wrap = %d, want 1", got)
	}
}
