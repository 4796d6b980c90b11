package guard

import "github.com/Denis-69/CrashRollbackGuard/nvs"

// storePendingAction implements §4.4's write protocol:
//
//  1. write pendAct = None first, so a partially written label can never
//     pair with a stale action value;
//  2. write the label + CRC (or remove both if label is empty);
//  3. write pendAct = action.
//
// If step 2 fails, both label keys are removed. If step 3 fails, both
// label keys are removed and the action is left as None.
func (g *Guard) storePendingAction(store nvs.Store, action pendingAction, label Label) {
	if _, err := store.PutU8(keyPendAct, uint8(pendingNone)); err != nil {
		g.log.Error("failed to clear pending action before write")
		return
	}

	if !label.Empty() {
		if !g.storeLabelWithCrc(store, keyPendLabel, keyPendCRC, label) {
			clearLabelWithCrc(store, keyPendLabel, keyPendCRC)
			return
		}
	} else {
		clearLabelWithCrc(store, keyPendLabel, keyPendCRC)
	}

	if _, err := store.PutU8(keyPendAct, uint8(action)); err != nil {
		g.log.Error("failed to write pending action")
		clearLabelWithCrc(store, keyPendLabel, keyPendCRC)
	}
}

// clearPendingAction sets pendAct back to None and removes the label+CRC.
func (g *Guard) clearPendingAction(store nvs.Store) {
	store.PutU8(keyPendAct, uint8(pendingNone))
	clearLabelWithCrc(store, keyPendLabel, keyPendCRC)
}

// readPendingAction implements §4.4's read protocol (I4, I5, I6, I7).
func (g *Guard) readPendingAction(store nvs.Store) (pendingAction, Label) {
	raw := store.GetU8(keyPendAct, uint8(pendingNone))
	action := pendingAction(raw)
	if !action.valid() {
		g.log.Error("pending action value invalid", "raw", raw)
		g.clearPendingAction(store)
		return pendingNone, Label{}
	}

	if action == pendingNone {
		if store.Exists(keyPendLabel) || store.Exists(keyPendCRC) {
			clearLabelWithCrc(store, keyPendLabel, keyPendCRC)
		}
		return pendingNone, Label{}
	}

	status := labelMissing
	var label Label
	label, status = loadLabelWithCrc(store, keyPendLabel, keyPendCRC)
	if status != labelOK {
		g.log.Error("pending action label invalid", "status", status, "action", action)
		if action == pendingControlledRestart {
			// User intent is trusted even without a usable label (I7).
			return action, Label{}
		}
		g.clearPendingAction(store)
		return pendingNone, Label{}
	}

	return action, label
}
