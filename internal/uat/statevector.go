package uat

import (
	"fmt"
	"math"
)

// angleScale converts a compact angle code to degrees.
const angleScale = 360.0 / (1 << 24)

// Hemisphere boundaries of the compact angle codes.
const (
	latNorthMax     = 4194304  // 2^22
	latSouthMin     = 12582912 // 3 * 2^22
	lngAntimeridian = 8388608  // 2^23
)

// Velocity magnitude sentinels.
const (
	velocityNotAvailable = 0
	velocityExceeded     = 1023
)

// AirGroundState is the 2-bit air/ground status of a state vector.
type AirGroundState uint8

const (
	AirGroundAirborne AirGroundState = iota
	AirGroundSurface
	AirGroundReserved2
	AirGroundReserved3
)

func (s AirGroundState) String() string {
	switch s {
	case AirGroundAirborne:
		return "airborne"
	case AirGroundSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// VelocityKind tells how a velocity component should be read.
type VelocityKind uint8

const (
	// VelocityUnknown means the air/ground state carries no velocity encoding.
	VelocityUnknown VelocityKind = iota
	VelocityNotAvailable
	VelocityValid
	VelocityExceeded
)

// Velocity is one decoded north/south or east/west component.
type Velocity struct {
	Kind  VelocityKind
	Knots int
	// Negative is the sign bit: south or west.
	Negative bool
	State    AirGroundState
}

func decodeVelocity(state AirGroundState, negative bool, magnitude uint16) Velocity {
	v := Velocity{Negative: negative, State: state}
	if state != AirGroundAirborne && state != AirGroundSurface {
		return v
	}
	switch magnitude {
	case velocityNotAvailable:
		v.Kind = VelocityNotAvailable
	case velocityExceeded:
		v.Kind = VelocityExceeded
	default:
		v.Kind = VelocityValid
		v.Knots = int(magnitude) - 1
		if state == AirGroundSurface {
			v.Knots *= 4
		}
	}
	return v
}

func (v Velocity) String() string {
	switch v.Kind {
	case VelocityNotAvailable:
		return "Not available"
	case VelocityExceeded:
		if v.State == AirGroundSurface {
			return "> 4086 kt"
		}
		return "> 1021.5 kt"
	case VelocityValid:
		return fmt.Sprintf("%d kt", v.Knots)
	default:
		return "Unknown"
	}
}

// Signed returns the component in knots with south/west negative.
func (v Velocity) Signed() (int, bool) {
	if v.Kind != VelocityValid {
		return 0, false
	}
	if v.Negative {
		return -v.Knots, true
	}
	return v.Knots, true
}

// VerticalRateSource tells which altitude the vertical rate was derived from.
type VerticalRateSource uint8

const (
	VerticalRateGeometric VerticalRateSource = iota
	VerticalRateBarometric
)

func (s VerticalRateSource) String() string {
	if s == VerticalRateBarometric {
		return "barometric"
	}
	return "geometric"
}

// VerticalRate is the decoded vertical velocity.
type VerticalRate struct {
	Available bool
	Negative  bool
	// FeetPerMinute is the unsigned magnitude.
	FeetPerMinute int
	Source        VerticalRateSource
}

func (v VerticalRate) String() string {
	if !v.Available {
		return "Not available"
	}
	sign := ""
	if v.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%d ft/min (from %s altitude)", sign, v.FeetPerMinute, v.Source)
}

// Signed returns the rate in ft/min with descent negative.
func (v VerticalRate) Signed() (int, bool) {
	if !v.Available {
		return 0, false
	}
	if v.Negative {
		return -v.FeetPerMinute, true
	}
	return v.FeetPerMinute, true
}

// StateVector is the 128-bit positional/kinematic record. Only the 13
// payload bytes are meaningful; the rest of the integer is zero padding.
type StateVector struct {
	raw word128
}

// NewStateVector reads a state vector from its payload bytes.
func NewStateVector(payload []byte) StateVector {
	return StateVector{raw: word128FromBytes(payload)}
}

func (sv StateVector) RawLatitude() uint32 { return uint32(sv.raw.bits(127, 105)) }
func (sv StateVector) RawLongitude() uint32 { return uint32(sv.raw.bits(104, 81)) }
func (sv StateVector) AltitudeGeometric() bool { return sv.raw.bit(80) }
func (sv StateVector) RawAltitude() uint16 { return uint16(sv.raw.bits(79, 68)) }
func (sv StateVector) NIC() uint8 { return uint8(sv.raw.bits(67, 64)) }
func (sv StateVector) AirGround() AirGroundState {
	return AirGroundState(sv.raw.bits(63, 62))
}
func (sv StateVector) RawNSVelocity() uint16 { return uint16(sv.raw.bits(59, 50)) }
func (sv StateVector) RawEWVelocity() uint16 { return uint16(sv.raw.bits(48, 39)) }
func (sv StateVector) RawVerticalRate() uint16 {
	return uint16(sv.raw.bits(36, 28))
}
func (sv StateVector) UTCCoupled() bool { return sv.raw.bit(27) }

// Altitude returns the altitude in feet.
func (sv StateVector) Altitude() int {
	return altitudeFeet(sv.RawAltitude())
}

// AltitudeType is "Geometric" or "Barometric".
func (sv StateVector) AltitudeType() string {
	if sv.AltitudeGeometric() {
		return "Geometric"
	}
	return "Barometric"
}

// Latitude returns the unsigned latitude angle in degrees.
func (sv StateVector) Latitude() float64 {
	return float64(sv.RawLatitude()) * angleScale
}

// LatitudeHemisphere returns "N", "S" or "??" when the code is ambiguous.
func (sv StateVector) LatitudeHemisphere() string {
	code := sv.RawLatitude()
	switch {
	case code <= latNorthMax:
		return "N"
	case code >= latSouthMin:
		return "S"
	default:
		return "??"
	}
}

// Longitude returns the longitude magnitude in degrees. Angles past 180
// are folded back into the western hemisphere.
func (sv StateVector) Longitude() float64 {
	lng := float64(sv.RawLongitude()) * angleScale
	if lng <= 180 {
		return lng
	}
	return 360 - lng
}

// LongitudeHemisphere labels the longitude from the unfolded code.
func (sv StateVector) LongitudeHemisphere() string {
	code := sv.RawLongitude()
	switch {
	case code == 0:
		return "PM"
	case code < lngAntimeridian:
		return "E"
	case code == lngAntimeridian:
		return "EW"
	default:
		return "W"
	}
}

// SignedPosition returns latitude and longitude in signed decimal degrees
// (south and west negative).
func (sv StateVector) SignedPosition() (lat, lng float64) {
	lat = float64(sv.RawLatitude()) * angleScale
	if lat > 90 {
		lat -= 180
	}
	lng = float64(sv.RawLongitude()) * angleScale
	if lng > 180 {
		lng -= 360
	}
	return lat, lng
}

// NSVelocity decodes the north/south velocity component.
func (sv StateVector) NSVelocity() Velocity {
	return decodeVelocity(sv.AirGround(), sv.raw.bit(60), sv.RawNSVelocity())
}

// EWVelocity decodes the east/west velocity component.
func (sv StateVector) EWVelocity() Velocity {
	return decodeVelocity(sv.AirGround(), sv.raw.bit(49), sv.RawEWVelocity())
}

// GroundTrack returns the true track in degrees [0, 360) derived from the
// velocity components.
func (sv StateVector) GroundTrack() (float64, bool) {
	ns, ok1 := sv.NSVelocity().Signed()
	ew, ok2 := sv.EWVelocity().Signed()
	if !ok1 || !ok2 || (ns == 0 && ew == 0) {
		return 0, false
	}
	track := math.Atan2(float64(ew), float64(ns)) * 180 / math.Pi
	if track < 0 {
		track += 360
	}
	return track, true
}

// GroundSpeed returns the horizontal speed in knots.
func (sv StateVector) GroundSpeed() (int, bool) {
	ns, ok1 := sv.NSVelocity().Signed()
	ew, ok2 := sv.EWVelocity().Signed()
	if !ok1 || !ok2 {
		return 0, false
	}
	return int(math.Round(math.Hypot(float64(ns), float64(ew)))), true
}

// VerticalRate decodes the vertical velocity. A zero magnitude means no data.
func (sv StateVector) VerticalRate() VerticalRate {
	mag := sv.RawVerticalRate()
	if mag == 0 {
		return VerticalRate{}
	}
	src := VerticalRateGeometric
	if sv.raw.bit(38) {
		src = VerticalRateBarometric
	}
	return VerticalRate{
		Available:     true,
		Negative:      sv.raw.bit(37),
		FeetPerMinute: (int(mag) - 1) * 64,
		Source:        src,
	}
}

// TISBSiteID is not decoded; it is always reported as unknown.
func (sv StateVector) TISBSiteID() string {
	return "?"
}

// altitudeFeet applies the 25 ft / -1025 ft altitude scaling shared by the
// primary and secondary altitude fields.
func altitudeFeet(code uint16) int {
	return int(code)*25 - 1025
}
