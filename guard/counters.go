package guard

import "github.com/Denis-69/CrashRollbackGuard/nvs"

// readFailCounter implements §4.3's redundant-counter read for the 32-bit
// fail count: fetch value and complement; if they don't pair up to
// 0xFFFFFFFF, the record is corrupt and is treated (and optionally
// repaired) as zero.
func (g *Guard) readFailCounter(store nvs.Store, allowRepair bool) uint32 {
	primary := store.GetU32(keyFails, 0)
	mirror := store.GetU32(keyFailsInv, primary^0xFFFFFFFF)
	if primary^mirror != 0xFFFFFFFF {
		g.log.Error((&CorruptionError{Key: keyFails, Reason: "value/complement mismatch"}).Error())
		if allowRepair {
			g.writeFailCounter(store, 0)
		}
		return 0
	}
	return primary
}

func (g *Guard) writeFailCounter(store nvs.Store, v uint32) {
	store.PutU32(keyFails, v)
	store.PutU32(keyFailsInv, v^0xFFFFFFFF)
}

func (g *Guard) resetFailCounter(store nvs.Store) {
	g.writeFailCounter(store, 0)
}

// readRollbackCount implements the 8-bit analogue for rbCnt/rbCntInv.
func (g *Guard) readRollbackCount(store nvs.Store, allowRepair bool) uint8 {
	primary := store.GetU8(keyRollCount, 0)
	mirror := store.GetU8(keyRollInv, primary^0xFF)
	if primary^mirror != 0xFF {
		g.log.Error((&CorruptionError{Key: keyRollCount, Reason: "value/complement mismatch"}).Error())
		if allowRepair {
			g.writeRollbackCount(store, 0)
		}
		return 0
	}
	return primary
}

func (g *Guard) writeRollbackCount(store nvs.Store, v uint8) {
	store.PutU8(keyRollCount, v)
	store.PutU8(keyRollInv, v^0xFF)
}

func (g *Guard) resetRollbackCount(store nvs.Store) {
	g.writeRollbackCount(store, 0)
}

// bumpRollbackCount increments rbCnt, saturating at 0xFE so the 0xFF value
// is never produced by normal increments and stays available as a sentinel
// (unused today, reserved the way the original reserves it).
func (g *Guard) bumpRollbackCount(store nvs.Store) {
	current := g.readRollbackCount(store, true)
	if current != 0xFE {
		g.writeRollbackCount(store, current+1)
	}
}
