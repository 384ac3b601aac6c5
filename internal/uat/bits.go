package uat

import "encoding/binary"

// word128 is a 128-bit unsigned value stored as two big-endian halves.
type word128 struct {
	hi uint64
	lo uint64
}

// word128FromBytes reads b as a big-endian 128-bit integer. b is
// right-padded with zero bytes (or truncated) to 16 bytes first.
func word128FromBytes(b []byte) word128 {
	var buf [16]byte
	copy(buf[:], b)
	return word128{
		hi: binary.BigEndian.Uint64(buf[0:8]),
		lo: binary.BigEndian.Uint64(buf[8:16]),
	}
}

// uint64FromBytes reads b as a big-endian 64-bit integer, zero padded on the right.
func uint64FromBytes(b []byte) uint64 {
	var buf [8]byte
	copy(buf[:], b)
	return binary.BigEndian.Uint64(buf[:])
}

// bits returns the inclusive bit range msb..lsb (127 = most significant).
// The range must be at most 64 bits wide.
func (w word128) bits(msb, lsb uint) uint64 {
	var shifted uint64
	if lsb >= 64 {
		shifted = w.hi >> (lsb - 64)
	} else {
		// Go defines x << 64 as 0, which covers lsb == 0.
		shifted = w.lo>>lsb | w.hi<<(64-lsb)
	}
	return shifted & mask(msb-lsb+1)
}

func (w word128) bit(n uint) bool {
	return w.bits(n, n) == 1
}

// bits64 is the 64-bit counterpart of word128.bits.
func bits64(v uint64, msb, lsb uint) uint64 {
	return (v >> lsb) & mask(msb-lsb+1)
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}
