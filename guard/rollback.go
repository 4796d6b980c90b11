package guard

import (
	"context"

	"github.com/Denis-69/CrashRollbackGuard/nvs"
	"github.com/Denis-69/CrashRollbackGuard/platform"
)

// attemptRollback implements §4.5.1: switch the boot target back to the
// recorded previous slot, or fall through to factory fallback when that
// slot is unusable for any reason.
func (g *Guard) attemptRollback(ctx context.Context, store nvs.Store, why string) Decision {
	prev, status := loadLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
	if status == labelCorrupted {
		g.log.Error("prev slot label corrupted", "why", why)
		clearLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
		return g.factoryFallback(ctx, store, "prev slot corrupted", SkippedNoPrev)
	}
	if status == labelMissing {
		g.log.Info("no prev slot recorded, cannot roll back", "why", why)
		return g.factoryFallback(ctx, store, "no prev slot recorded", SkippedNoPrev)
	}

	running, _ := g.RunningLabel()
	if !running.Empty() && prev.Equal(running) {
		g.log.Error("prev slot equals running slot, cannot roll back", "label", running)
		return g.factoryFallback(ctx, store, "prev slot equals running slot", SkippedSameSlot)
	}

	h, ok := g.platform.FindPartitionByLabel(prev.String())
	if !ok {
		g.log.Error(ErrPartitionNotFound.Error(), "label", prev)
		clearLabelWithCrc(store, keyPrevLabel, keyPrevCRC)
		return g.factoryFallback(ctx, store, "prev slot partition missing", SkippedNoPrev)
	}

	if g.opt.featurePendingVerify {
		switch g.platform.OTAStateOf(h) {
		case platform.OTAInvalid, platform.OTAAborted:
			g.log.Error("prev slot image unusable", "label", prev)
			return g.factoryFallback(ctx, store, "prev slot image unusable", SkippedNoPrev)
		}
	}

	g.log.Info("rolling back", "why", why, "target", prev)
	g.storePendingAction(store, pendingRollbackPrev, prev)

	if err := g.platform.SetBootPartition(h); err != nil {
		g.log.Error("boot switch failed", "err", &ErrBootSwitchFailed{Label: prev.String(), Err: err})
		g.clearPendingAction(store)
		return g.factoryFallback(ctx, store, "prev slot boot switch failed", FailedSwitch)
	}

	g.bumpRollbackCount(store)
	g.platform.Restart()
	return RollbackToPrev
}

// factoryFallback implements §4.5.2: if factory fallback is enabled (and
// compiled in), switch the boot target to the factory partition. Otherwise
// it returns defaultFailure, the caller-supplied Decision describing why
// the primary rollback path couldn't proceed.
func (g *Guard) factoryFallback(ctx context.Context, store nvs.Store, cause string, defaultFailure Decision) Decision {
	if !g.opt.featureFactoryFallback || !g.opt.fallbackToFactory {
		return defaultFailure
	}

	h, ok := g.platform.FindPartitionByLabel(g.opt.factoryLabel.String())
	if !ok {
		g.log.Error("factory partition not found", "cause", cause)
		return defaultFailure
	}

	running, _ := g.RunningLabel()
	if !running.Empty() && running.Equal(g.opt.factoryLabel) {
		g.log.Error("already running factory, nothing to fall back to", "cause", cause)
		return SkippedSameSlot
	}

	g.log.Info("falling back to factory", "cause", cause)
	g.storePendingAction(store, pendingRollbackFactory, g.opt.factoryLabel)

	if err := g.platform.SetBootPartition(h); err != nil {
		g.log.Error("factory boot switch failed", "err", &ErrBootSwitchFailed{Label: g.opt.factoryLabel.String(), Err: err})
		g.clearPendingAction(store)
		return FailedSwitch
	}

	g.platform.Restart()
	return RollbackToFactory
}
