package guard

// Decision is the outcome BeginEarly reports. A successful rollback calls
// platform.Platform.Restart() before returning its Decision value, so on a
// real target RollbackToPrev/RollbackToFactory are never actually observed
// by a caller; they exist so the type is exhaustive and so simulated
// platforms (which return from Restart) can assert on them in tests.
type Decision uint8

const (
	// None means no rollback was needed or attempted.
	None Decision = iota
	// RollbackToPrev means the guard switched the boot target to the
	// previous known-good slot and restarted.
	RollbackToPrev
	// RollbackToFactory means the guard switched the boot target to the
	// factory slot and restarted.
	RollbackToFactory
	// SkippedNoPrev means rollback was warranted but no usable previous
	// (or factory) slot was available.
	SkippedNoPrev
	// SkippedSameSlot means the recorded previous slot equals the
	// currently running slot, so rolling back to it would be a no-op.
	SkippedSameSlot
	// FailedSwitch means the guard attempted to switch the boot partition
	// and the platform reported failure.
	FailedSwitch
)

// String implements fmt.Stringer for log-friendly output.
func (d Decision) String() string {
	switch d {
	case None:
		return "none"
	case RollbackToPrev:
		return "rollback-to-prev"
	case RollbackToFactory:
		return "rollback-to-factory"
	case SkippedNoPrev:
		return "skipped-no-prev"
	case SkippedSameSlot:
		return "skipped-same-slot"
	case FailedSwitch:
		return "failed-switch"
	default:
		return "unknown"
	}
}

// pendingAction is the persisted action code, stored as a single byte
// (I4: any byte outside this range is treated as corruption on read).
type pendingAction uint8

const (
	pendingNone pendingAction = iota
	pendingRollbackPrev
	pendingRollbackFactory
	pendingControlledRestart
)

func (a pendingAction) valid() bool {
	return a <= pendingControlledRestart
}

func (a pendingAction) String() string {
	switch a {
	case pendingNone:
		return "none"
	case pendingRollbackPrev:
		return "rollback-prev"
	case pendingRollbackFactory:
		return "rollback-factory"
	case pendingControlledRestart:
		return "controlled-restart"
	default:
		return "invalid"
	}
}

// labelStatus is the outcome of loading a CRC-tagged label record.
type labelStatus uint8

const (
	labelMissing labelStatus = iota
	labelOK
	labelCorrupted
)
