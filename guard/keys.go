package guard

// Durable key names, matching the nine-entry on-disk format exactly. They
// are unexported, so only this package uses them: counters.go and
// pending.go for the counter and pending keys, and guard.go/rollback.go
// for the prev label keys (through labels.go's helpers).
const (
	keyFails     = "fails"
	keyFailsInv  = "failsInv"
	keyRollCount = "rbCnt"
	keyRollInv   = "rbCntInv"
	keyPrevLabel = "prev"
	keyPrevCRC   = "prevCrc"
	keyPendAct   = "pendAct"
	keyPendLabel = "pendLbl"
	keyPendCRC   = "pendCrc"
)
