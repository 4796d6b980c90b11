package nvs

import (
	"errors"
	"testing"
)

func TestFaultInjectorArmFailure(t *testing.T) {
	fi := NewFaultInjector()
	o := NewMemOpener(fi)
	s, _ := o.Open("crg", false)

	fi.ArmFailure("crg/fails", 1)

	if _, err := s.PutU32("fails", 1); err != nil {
		t.Fatalf("first write should pass through, got %v", err)
	}
	_, err := s.PutU32("fails", 2)
	if !errors.Is(err, errInjectedPowerCut) {
		t.Fatalf("second write should fail with injected power cut, got %v", err)
	}

	// the fault fires once; the next write succeeds again.
	if _, err := s.PutU32("fails", 3); err != nil {
		t.Fatalf("third write should pass through, got %v", err)
	}
	if got := s.GetU32("fails", 0); got != 3 {
		t.Errorf("fails = %d, want 3", got)
	}
}

func TestFaultInjectorArmCorruption(t *testing.T) {
	fi := NewFaultInjector()
	o := NewMemOpener(fi)
	s, _ := o.Open("crg", false)

	fi.ArmCorruption("crg/fails", func(b []byte) []byte {
		for i := range b {
			b[i] ^= 0xFF
		}
		return b
	})

	if _, err := s.PutU32("fails", 0); err != nil {
		t.Fatalf("PutU32: %v", err)
	}
	if got := s.GetU32("fails", 0); got == 0 {
		t.Error("corrupted write was not corrupted")
	}
}
