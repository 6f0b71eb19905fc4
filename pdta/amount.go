package pdta

import "fmt"

// An Amount is the raw two byte value cell of a generator row. The cell is
// stored as plain little-endian bits and decodes three ways at once; the
// caller picks the interpretation applicable to the generator's operator.
type Amount uint16

// AmountFromRange returns the amount encoding of a low/high range pair.
func AmountFromRange(lo, hi uint8) Amount {
	return Amount(uint16(lo) | uint16(hi)<<8)
}

// AmountFromInt16 returns the amount encoding of a signed 16-bit value.
func AmountFromInt16(v int16) Amount {
	return Amount(uint16(v))
}

// Range returns the amount as a low/high pair of the cell's two bytes.
func (a Amount) Range() (lo, hi uint8) {
	return uint8(a), uint8(a >> 8)
}

// Uint16 returns the amount as an unsigned 16-bit value, the encoding of
// cross-table row references.
func (a Amount) Uint16() uint16 {
	return uint16(a)
}

// Int16 returns the amount as a signed 16-bit value.
func (a Amount) Int16() int16 {
	return int16(a)
}

// String returns the range interpretation of the amount, e.g. "60-127".
func (a Amount) String() string {
	lo, hi := a.Range()
	return fmt.Sprintf("%d-%d", lo, hi)
}
