package uat

// AuxStateVector is the 64-bit auxiliary state vector. It carries the
// altitude of the type not reported in the state vector.
type AuxStateVector uint64

// NewAuxStateVector reads an auxiliary state vector from its payload bytes.
func NewAuxStateVector(payload []byte) AuxStateVector {
	return AuxStateVector(uint64FromBytes(payload))
}

// RawSecondaryAltitude returns the 12-bit secondary altitude code.
func (a AuxStateVector) RawSecondaryAltitude() uint16 {
	return uint16(bits64(uint64(a), 63, 52))
}

// SecondaryAltitude returns the secondary altitude in feet.
func (a AuxStateVector) SecondaryAltitude() int {
	return altitudeFeet(a.RawSecondaryAltitude())
}

// TargetState is the 64-bit target state record. Its fields are reported
// as raw codes.
type TargetState uint64

// NewTargetState reads a target state from its payload bytes.
func NewTargetState(payload []byte) TargetState {
	return TargetState(uint64FromBytes(payload))
}

// HeadingOrTrack returns the raw 15-bit heading/track field.
func (t TargetState) HeadingOrTrack() uint16 {
	return uint16(bits64(uint64(t), 63, 49))
}

// TargetAltitude returns the raw 17-bit target altitude field.
func (t TargetState) TargetAltitude() uint32 {
	return uint32(bits64(uint64(t), 48, 32))
}
