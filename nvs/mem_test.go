package nvs

import "testing"

func TestMemStoreRoundTrip(t *testing.T) {
	o := NewMemOpener(nil)
	s, err := o.Open("crg", false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.PutU32("fails", 7); err != nil {
		t.Fatalf("PutU32: %v", err)
	}
	if got := s.GetU32("fails", 99); got != 7 {
		t.Errorf("GetU32 = %d, want 7", got)
	}

	if _, err := s.PutU8("rbCnt", 3); err != nil {
		t.Fatalf("PutU8: %v", err)
	}
	if got := s.GetU8("rbCnt", 99); got != 3 {
		t.Errorf("GetU8 = %d, want 3", got)
	}

	if n := s.PutString("prev", "slot_a"); n != 6 {
		t.Fatalf("PutString = %d, want 6", n)
	}
	var buf [16]byte
	if n := s.GetString("prev", buf[:]); n != 6 || string(buf[:n]) != "slot_a" {
		t.Errorf("GetString = %q, want slot_a", buf[:n])
	}

	if !s.Exists("prev") {
		t.Error("Exists(prev) = false, want true")
	}
	if err := s.Remove("prev"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists("prev") {
		t.Error("Exists(prev) after Remove = true, want false")
	}
}

func TestMemStoreNamespacesDoNotCollide(t *testing.T) {
	o := NewMemOpener(nil)
	a, _ := o.Open("ns-a", false)
	b, _ := o.Open("ns-b", false)

	a.PutU32("fails", 1)
	b.PutU32("fails", 2)

	if got := a.GetU32("fails", 0); got != 1 {
		t.Errorf("ns-a fails = %d, want 1", got)
	}
	if got := b.GetU32("fails", 0); got != 2 {
		t.Errorf("ns-b fails = %d, want 2", got)
	}
}

func TestMemStoreReadOnlyRejectsWrites(t *testing.T) {
	o := NewMemOpener(nil)
	w, _ := o.Open("crg", false)
	w.PutU32("fails", 5)

	r, _ := o.Open("crg", true)
	if _, err := r.PutU32("fails", 9); err == nil {
		t.Error("PutU32 on read-only store succeeded, want error")
	}
	if got := r.GetU32("fails", 0); got != 5 {
		t.Errorf("read-only GetU32 = %d, want 5 (unchanged)", got)
	}
}

func TestEmptyNamespaceRejected(t *testing.T) {
	o := NewMemOpener(nil)
	if _, err := o.Open("", false); err == nil {
		t.Error("Open(\"\") succeeded, want error")
	}
}
