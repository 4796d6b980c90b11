package guard

import "github.com/Denis-69/CrashRollbackGuard/nvs"

// storeLabelWithCrc writes value under labelKey plus its CRC-32 under
// crcKey (I3). On any failure it removes both keys rather than leaving a
// label without a matching CRC.
func (g *Guard) storeLabelWithCrc(store nvs.Store, labelKey, crcKey string, value Label) bool {
	s := value.String()
	if store.PutString(labelKey, s) == 0 {
		g.log.Error("failed to write label", "key", labelKey)
		store.Remove(labelKey)
		store.Remove(crcKey)
		return false
	}
	if _, err := store.PutU32(crcKey, crc32Of(s)); err != nil {
		store.Remove(labelKey)
		store.Remove(crcKey)
		g.log.Error("failed to write label crc", "key", labelKey)
		return false
	}
	return true
}

// loadLabelWithCrc loads labelKey and validates it against crcKey (I3).
func loadLabelWithCrc(store nvs.Store, labelKey, crcKey string) (Label, labelStatus) {
	var buf [LabelMaxLen]byte
	n := store.GetString(labelKey, buf[:])
	if n == 0 {
		return Label{}, labelMissing
	}
	if !store.Exists(crcKey) {
		return Label{}, labelCorrupted
	}
	stored := store.GetU32(crcKey, 0)
	s := string(buf[:n])
	if crc32Of(s) != stored {
		return Label{}, labelCorrupted
	}
	l, ok := NewLabel(s)
	if !ok {
		return Label{}, labelCorrupted
	}
	return l, labelOK
}

// clearLabelWithCrc removes both the label and CRC keys.
func clearLabelWithCrc(store nvs.Store, labelKey, crcKey string) {
	store.Remove(labelKey)
	store.Remove(crcKey)
}
