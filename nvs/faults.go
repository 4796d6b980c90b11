package nvs

import "errors"

// FaultInjector lets tests simulate a power cut mid-write or a bit-flip in
// already-stored data, without needing real flash hardware. It is the
// in-memory equivalent of the teacher's pattern of constructing a mock
// device that fails a specific command in a sequence
// (bootloader.programmer_test.go).
//
// A FaultInjector is shared by every MemStore opened from the same
// MemOpener, so a test can fail a write no matter which namespace issues
// it.
type FaultInjector struct {
	// failKeys lists raw (namespace-prefixed) keys armed by ArmFailure: the
	// armed key lets the recorded number of writes through and fails the
	// one after, simulating power loss before that write lands. Each key is
	// consumed (removed from the map) once it fires.
	failKeys map[string]int // key -> remaining writes to let through before failing

	// CorruptKeys maps a raw key to a function that mutates the
	// to-be-written bytes before they are stored, simulating a bit-flip
	// torn write. The value is stored corrupted; the caller of Put still
	// sees success, matching real flash behavior (the corruption is only
	// visible on the next read).
	corruptKeys map[string]func([]byte) []byte
}

// NewFaultInjector creates an empty FaultInjector.
func NewFaultInjector() *FaultInjector {
	return &FaultInjector{
		failKeys:    make(map[string]int),
		corruptKeys: make(map[string]func([]byte) []byte),
	}
}

// ArmFailure makes the next `after` writes to key succeed and the write
// after that fail, simulating power loss between two sequential writes
// (e.g. `fails` succeeding and `failsInv` being cut).
func (f *FaultInjector) ArmFailure(namespacedKey string, after int) {
	f.failKeys[namespacedKey] = after
}

// ArmCorruption makes the next write to key store mutate(originalBytes)
// instead of the intended value, simulating a bit-flip in the write path.
func (f *FaultInjector) ArmCorruption(namespacedKey string, mutate func([]byte) []byte) {
	f.corruptKeys[namespacedKey] = mutate
}

var errInjectedPowerCut = errors.New("nvs: injected power cut")

func (f *FaultInjector) beforeWrite(key string, v []byte) error {
	if remaining, armed := f.failKeys[key]; armed {
		if remaining <= 0 {
			delete(f.failKeys, key)
			return errInjectedPowerCut
		}
		f.failKeys[key] = remaining - 1
	}
	if mutate, armed := f.corruptKeys[key]; armed {
		delete(f.corruptKeys, key)
		copy(v, mutate(append([]byte(nil), v...)))
	}
	return nil
}
