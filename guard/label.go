package guard

import "unicode"

// LabelMaxLen is the maximum length of a slot label, matching
// ESP_PARTITION_LABEL_MAX_LEN on the original target.
const LabelMaxLen = 16

// Label is a short, owned partition identifier. It is copied by value out
// of any caller-supplied string, so the caller never needs to keep the
// original string's backing memory alive, the Go equivalent of the
// original's fixed char[CRG_LABEL_BUFFER_SIZE] buffers.
type Label struct {
	buf [LabelMaxLen]byte
	n   uint8
}

// NewLabel copies s into a Label. It returns the zero Label and false if s
// is empty, longer than LabelMaxLen, contains a NUL byte, or contains a
// non-printable-ASCII byte.
func NewLabel(s string) (Label, bool) {
	var l Label
	if s == "" || len(s) > LabelMaxLen {
		return l, false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == 0 || b > unicode.MaxASCII || !unicode.IsPrint(rune(b)) {
			return l, false
		}
	}
	copy(l.buf[:], s)
	l.n = uint8(len(s))
	return l, true
}

// String returns the label's text.
func (l Label) String() string {
	return string(l.buf[:l.n])
}

// Empty reports whether the label holds no text.
func (l Label) Empty() bool {
	return l.n == 0
}

// Equal reports whether two labels hold identical bytes.
func (l Label) Equal(o Label) bool {
	return l.n == o.n && l.buf == o.buf
}
