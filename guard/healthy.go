package guard

import (
	"context"

	"github.com/Denis-69/CrashRollbackGuard/platform"
)

// MarkHealthyNow implements §4.5.3: confirm the running image and reset the
// crash-loop counters. It is idempotent (calling it a second time within the
// same boot performs no further durable writes), and it only commits to
// healthyMarked once the durable work has actually succeeded, so a transient
// store-open failure leaves it eligible for a later retry from LoopTick.
func (g *Guard) MarkHealthyNow(ctx context.Context) {
	if g.healthyMarked {
		return
	}

	store, err := g.opener.Open(g.opt.namespace.String(), false)
	if err != nil {
		g.log.Error("nvs open failed", "err", err)
		return
	}
	defer store.Close()

	fails := g.readFailCounter(store, true)
	rbCnt := g.readRollbackCount(store, true)
	if fails == 0 && rbCnt == 0 && !g.pendingVerify {
		g.healthyMarked = true
		g.log.Debug("markHealthyNow skipped (already clean)")
		return
	}

	g.resetFailCounter(store)
	g.resetRollbackCount(store)

	if g.pendingVerify {
		if err := g.platform.MarkValidCancelRollback(); err != nil {
			g.log.Error("mark valid failed", "err", err)
		} else {
			g.log.Info("image confirmed valid")
			g.pendingVerify = false
			g.runningImgState = platform.OTAValid
		}
	}

	g.healthyMarked = true
	g.log.Info("marked healthy, fails reset")
}

// LoopTick implements §4.5.4: if stable-tick is enabled and stableTime has
// elapsed since BeginEarly without an explicit MarkHealthyNow, confirm the
// image automatically. Comparisons use unsigned subtraction so a wrap of
// platform.Platform.MonotonicMillis partway through the wait is harmless.
func (g *Guard) LoopTick(ctx context.Context) {
	if !g.opt.featureStableTick || g.healthyMarked || g.opt.stableTime <= 0 {
		return
	}
	elapsedMs := g.platform.MonotonicMillis() - g.stableStartMs
	if uint64(elapsedMs) >= uint64(g.opt.stableTime.Milliseconds()) {
		g.MarkHealthyNow(ctx)
	}
}

// ArmControlledRestart implements §4.5.5: record a pending controlled
// restart for the running slot and restart immediately. On the next
// BeginEarly, the pending record is recognized and fails is reset (rbCnt is
// left as it is) regardless of the reset reason reported by the platform (a controlled
// restart is, by construction, never a crash).
func (g *Guard) ArmControlledRestart(ctx context.Context) {
	store, err := g.opener.Open(g.opt.namespace.String(), false)
	if err != nil {
		g.log.Error("nvs open failed", "err", err)
		return
	}

	label, _ := g.RunningLabel()
	g.storePendingAction(store, pendingControlledRestart, label)
	store.Close()

	g.platform.Restart()
}
