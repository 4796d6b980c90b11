package guard

import (
	"context"

	"github.com/Denis-69/CrashRollbackGuard/nvs"
	"github.com/Denis-69/CrashRollbackGuard/platform"
)

// Guard is a crash-loop detector and rollback guard bound to one
// platform.Platform and one nvs.Opener. It is not safe for concurrent use:
// all methods are meant to be called from the single boot-path goroutine.
//
// Unlike the teacher's Programmer, which documents itself safe for
// concurrent use after construction, Guard makes the opposite guarantee:
// it owns mutable in-memory state (healthyMarked, pendingVerify,
// stableStartMs) that §5 of the specification explicitly scopes to one
// caller thread.
type Guard struct {
	platform platform.Platform
	opener   nvs.Opener
	opt      options
	log      leveledLogger

	healthyMarked   bool
	resetReason     platform.ResetReason
	pendingVerify   bool
	runningImgState platform.OTAState
	stableStartMs   uint32
}

// New creates a Guard bound to p (the hardware/bootloader primitives) and
// opener (the durable storage backend). Options configure policy; omitted
// options take the defaults documented on each With* function.
func New(p platform.Platform, opener nvs.Opener, opts ...Option) *Guard {
	g := &Guard{
		platform: p,
		opener:   opener,
		opt:      defaultOptions(),
	}
	g.SetOptions(opts...)
	return g
}

// SetOptions applies additional options, which may be called again before
// any BeginEarly/MarkHealthyNow call to reconfigure the guard.
func (g *Guard) SetOptions(opts ...Option) {
	for _, opt := range opts {
		opt(&g.opt)
	}
	g.log = leveledLogger{level: g.opt.logLevel, sink: g.opt.logger}
}

// SetSuspiciousPredicate is equivalent to passing WithSuspiciousPredicate,
// provided as a direct setter to match the original API surface
// (setSuspiciousResetPredicate), which can be called at any time, not just
// at construction.
func (g *Guard) SetSuspiciousPredicate(pred SuspiciousPredicate) {
	g.opt.suspiciousPredicate = pred
}

// LastResetReason returns the reset reason observed by the most recent
// BeginEarly call.
func (g *Guard) LastResetReason() platform.ResetReason {
	return g.resetReason
}

// PendingVerifyState reports whether the running image was in
// platform.OTAPendingVerify state as of the most recent BeginEarly call.
func (g *Guard) PendingVerifyState() bool {
	return g.pendingVerify
}

// FailCount reads the current durable fail counter without mutating it.
// It opens the namespace read-only and returns 0 if that open fails, since
// a caller asking "how many fails so far" should never be the thing that
// makes an unavailable store fatal.
func (g *Guard) FailCount() uint32 {
	store, err := g.opener.Open(g.opt.namespace.String(), true)
	if err != nil {
		return 0
	}
	defer store.Close()
	return g.readFailCounter(store, false)
}

// RunningLabel returns the label of the currently-running partition.
func (g *Guard) RunningLabel() (Label, bool) {
	h := g.platform.RunningPartition()
	if h == nil {
		return Label{}, false
	}
	return NewLabel(h.Label())
}

func (g *Guard) isSuspicious(r platform.ResetReason) bool {
	if g.opt.suspiciousPredicate != nil {
		return g.opt.suspiciousPredicate(r)
	}
	switch r {
	case platform.ResetPowerOn, platform.ResetExternalPin:
		return false
	case platform.ResetSoftware:
		return g.opt.swResetCountsAsCrash
	case platform.ResetBrownout:
		return g.opt.brownoutCountsAsCrash
	default:
		return true
	}
}

// BeginEarly is the guard's entry point, meant to be called as early as
// possible during application startup. See §4.5 of the design for the full
// step sequence; this implementation follows it exactly.
//
// A successful rollback calls platform.Platform.Restart() before returning.
// On a real target that call never returns, so the Decision value is
// observable only by simulated platforms used in tests.
func (g *Guard) BeginEarly(ctx context.Context) Decision {
	g.resetReason = g.platform.ResetReason()
	g.healthyMarked = false
	g.stableStartMs = g.platform.MonotonicMillis()

	g.pendingVerify = false
	g.runningImgState = platform.OTAUndefined
	if g.opt.featurePendingVerify {
		if running := g.platform.RunningPartition(); running != nil {
			state := g.platform.OTAStateOf(running)
			g.runningImgState = state
			g.pendingVerify = state == platform.OTAPendingVerify
			if state == platform.OTAInvalid {
				g.log.Error("running slot marked invalid", "label", running.Label())
			}
		}
	}

	store, err := g.opener.Open(g.opt.namespace.String(), false)
	if err != nil {
		g.log.Error("nvs open failed", "err", err)
		return None
	}
	defer store.Close()

	fails := g.readFailCounter(store, true)
	runningLabel, _ := g.RunningLabel()

	pendingBoot := false
	action, pendingLabel := g.readPendingAction(store)
	if action != pendingNone {
		labelPresent := !pendingLabel.Empty()
		labelMatches := labelPresent && !runningLabel.Empty() && pendingLabel.Equal(runningLabel)

		switch {
		case action == pendingControlledRestart:
			pendingBoot = true
			g.clearPendingAction(store)
			g.resetFailCounter(store)
			fails = 0
			switch {
			case labelPresent && !labelMatches:
				g.log.Error("controlled restart label mismatch", "stored", pendingLabel, "running", runningLabel)
			case !labelPresent:
				g.log.Error("controlled restart label missing, trusting user intent")
			default:
				g.log.Info("controlled restart completed", "label", runningLabel)
			}
		case labelMatches:
			pendingBoot = true
			g.clearPendingAction(store)
			g.resetFailCounter(store)
			fails = 0
			g.log.Info("pending action completed", "action", action, "label", runningLabel)
		default:
			g.log.Error("pending action mismatch", "action", action, "stored", pendingLabel, "running", runningLabel)
			g.clearPendingAction(store)
		}
	}

	if g.opt.autoSavePrevSlot {
		_, status := loadLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
		switch {
		case status == labelMissing && !runningLabel.Empty():
			if g.storeLabelWithCrc(store, keyPrevLabel, keyPrevCRC, runningLabel) {
				g.resetRollbackCount(store)
				g.log.Debug("auto-saved prev slot", "label", runningLabel)
			}
		case status == labelCorrupted:
			g.log.Error("auto-saved prev slot corrupted, clearing")
			clearLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
		}
	}

	suspicious := !pendingBoot && g.isSuspicious(g.resetReason)

	if !suspicious {
		if fails != 0 {
			g.writeFailCounter(store, 0)
		}
		return None
	}

	if g.opt.featurePendingVerify && !pendingBoot && g.runningImgState == platform.OTAInvalid {
		return g.attemptRollback(ctx, store, "running image invalid")
	}

	if fails < 0xFFFFFFFF {
		ceiling := g.opt.failLimit
		if ceiling == 0 {
			ceiling = 0xFFFFFFFF
		}
		if fails < ceiling {
			fails++
			g.writeFailCounter(store, fails)
		}
	}

	if fails >= g.opt.failLimit && g.opt.failLimit > 0 {
		if g.opt.maxRollbackAttempts > 0 {
			rbCnt := g.readRollbackCount(store, true)
			if rbCnt >= g.opt.maxRollbackAttempts {
				g.log.Error("rollback guard active", "rbCnt", rbCnt, "max", g.opt.maxRollbackAttempts)
				return g.factoryFallback(ctx, store, "rollback guard active", SkippedNoPrev)
			}
		}
		return g.attemptRollback(ctx, store, "crash-loop limit reached")
	}

	return None
}

// SaveCurrentAsPreviousSlot stores the running partition's label as the
// recorded "previous" slot, resetting the rollback counter. It returns
// false (and logs at Error) if the namespace cannot be opened or the
// running partition cannot be determined.
func (g *Guard) SaveCurrentAsPreviousSlot(ctx context.Context) bool {
	store, err := g.opener.Open(g.opt.namespace.String(), false)
	if err != nil {
		g.log.Error("nvs open failed", "err", err)
		return false
	}
	defer store.Close()

	label, ok := g.RunningLabel()
	if !ok {
		g.log.Error("running partition label unavailable")
		return false
	}

	if g.storeLabelWithCrc(store, keyPrevLabel, keyPrevCRC, label) {
		g.resetRollbackCount(store)
		g.log.Info("saved prev slot", "label", label)
		return true
	}
	return false
}

// PreviousSlot returns the recorded previous-slot label, if any and valid.
// A corrupt record is cleared as a side effect, matching the original's
// getPreviousSlot() behavior.
func (g *Guard) PreviousSlot(ctx context.Context) (Label, bool) {
	store, err := g.opener.Open(g.opt.namespace.String(), true)
	if err != nil {
		return Label{}, false
	}
	defer store.Close()

	label, status := loadLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
	if status == labelCorrupted {
		g.log.Error("stored prev slot label corrupted, clearing")
		if w, err := g.opener.Open(g.opt.namespace.String(), false); err == nil {
			clearLabelWithCrc(w, keyPrevLabel, keyPrevCRC)
			w.Close()
		}
		return Label{}, false
	}
	if status != labelOK {
		return Label{}, false
	}
	return label, true
}

// ClearPreviousSlot removes the recorded previous-slot label and resets the
// rollback counter.
func (g *Guard) ClearPreviousSlot(ctx context.Context) {
	store, err := g.opener.Open(g.opt.namespace.String(), false)
	if err != nil {
		return
	}
	defer store.Close()
	clearLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
	g.resetRollbackCount(store)
}
