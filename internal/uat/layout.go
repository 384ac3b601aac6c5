package uat

// Span is a byte range inside a downlink payload. A zero Length means the
// sub-structure is absent.
type Span struct {
	Offset int
	Length int
}

// Present reports whether the span describes a sub-structure.
func (s Span) Present() bool {
	return s.Length > 0
}

// End returns the first byte offset past the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Layout lists where each optional sub-structure sits for a given type code.
type Layout struct {
	StateVector    Span
	ModeStatus     Span
	AuxStateVector Span
	TargetState    Span
}

var (
	stateVectorSpan = Span{Offset: 4, Length: 13}
	modeStatusSpan  = Span{Offset: 17, Length: 11}
	trailerSpan     = Span{Offset: 29, Length: 4}
	// Type 6 carries its target state inside the mode status range.
	type6TargetSpan = Span{Offset: 24, Length: 4}
)

// ResolveLayout returns the payload layout for an MDB type code. Unknown
// type codes yield an empty layout.
func ResolveLayout(typeCode uint8) Layout {
	switch typeCode {
	case 0:
		return Layout{StateVector: stateVectorSpan}
	case 1:
		return Layout{StateVector: stateVectorSpan, ModeStatus: modeStatusSpan, AuxStateVector: trailerSpan}
	case 2:
		return Layout{AuxStateVector: trailerSpan}
	case 3:
		return Layout{ModeStatus: modeStatusSpan, TargetState: trailerSpan}
	case 4:
		return Layout{TargetState: trailerSpan}
	case 5:
		return Layout{AuxStateVector: trailerSpan}
	case 6:
		return Layout{AuxStateVector: trailerSpan, TargetState: type6TargetSpan}
	default:
		return Layout{}
	}
}

// RequiredLength is the minimum payload length needed to decode every
// sub-structure in the layout (at least the header).
func (l Layout) RequiredLength() int {
	need := HeaderLength
	for _, s := range []Span{l.StateVector, l.ModeStatus, l.AuxStateVector, l.TargetState} {
		if s.Present() && s.End() > need {
			need = s.End()
		}
	}
	return need
}

// slice returns the span's bytes from data. The caller checks the length.
func (s Span) slice(data []byte) []byte {
	return data[s.Offset:s.End()]
}
