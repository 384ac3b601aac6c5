package uat

import "fmt"

// base40Alphabet maps base-40 call sign digits to characters.
const base40Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ    "

// CallSignLength is the fixed width of a decoded call sign.
const CallSignLength = 8

var emitterCategoryNames = [...]string{
	"No information",
	"Light",
	"Small",
	"Large",
	"High vortex large",
	"Heavy",
	"Highly maneuverable",
	"Rotorcraft",
	"Unassigned",
	"Glider/sailplane",
	"Lighter than air",
	"Parachutist/sky diver",
	"Ultra light/hang glider/paraglider",
	"Unassigned",
	"Unmanned aerial vehicle",
	"Space/transatmospheric vehicle",
	"Unassigned",
	"Surface vehicle - emergency",
	"Surface vehicle - service",
	"Point obstacle",
	"Cluster obstacle",
	"Line obstacle",
}

// EmitterCategoryName describes an emitter category index (0-39).
func EmitterCategoryName(category uint8) string {
	if int(category) < len(emitterCategoryNames) {
		return emitterCategoryNames[category]
	}
	return "Reserved"
}

// EmergencyStatus is the 3-bit emergency/priority status.
type EmergencyStatus uint8

// EmergencyNone is the status of a normal flight.
const EmergencyNone EmergencyStatus = 0

var emergencyNames = [8]string{
	"No emergency",
	"General emergency",
	"Lifeguard/medical emergency",
	"Minimum fuel",
	"No communications",
	"Unlawful interference",
	"Downed aircraft",
	"Reserved",
}

func (e EmergencyStatus) String() string {
	return emergencyNames[e&0x07]
}

// ModeStatus is the 128-bit identity/capability record.
//
// The first 16-bit word is shared by the emitter category and the first two
// call sign characters; EmitterCategory and CallSign both derive from it.
type ModeStatus struct {
	raw word128
}

// NewModeStatus reads a mode status from its payload bytes.
func NewModeStatus(payload []byte) ModeStatus {
	return ModeStatus{raw: word128FromBytes(payload)}
}

// RawWord1 is the emitter category / call sign characters 1-2 word.
func (ms ModeStatus) RawWord1() uint16 { return uint16(ms.raw.bits(127, 112)) }

// RawWord2 holds call sign characters 3-5.
func (ms ModeStatus) RawWord2() uint16 { return uint16(ms.raw.bits(111, 96)) }

// RawWord3 holds call sign characters 6-8.
func (ms ModeStatus) RawWord3() uint16 { return uint16(ms.raw.bits(95, 80)) }

func (ms ModeStatus) Emergency() EmergencyStatus {
	return EmergencyStatus(ms.raw.bits(79, 77))
}

// Version is the UAT MOPS version.
func (ms ModeStatus) Version() uint8 { return uint8(ms.raw.bits(76, 74)) }
func (ms ModeStatus) SIL() uint8 { return uint8(ms.raw.bits(73, 72)) }
func (ms ModeStatus) TransmitMSO() uint8 { return uint8(ms.raw.bits(71, 66)) }
func (ms ModeStatus) NACp() uint8 { return uint8(ms.raw.bits(63, 60)) }
func (ms ModeStatus) NACv() uint8 { return uint8(ms.raw.bits(59, 57)) }
func (ms ModeStatus) NICBaro() bool { return ms.raw.bit(56) }
func (ms ModeStatus) CDTI() bool { return ms.raw.bit(55) }
func (ms ModeStatus) ACAS() bool { return ms.raw.bit(54) }

// OperationalModes returns the three operational mode bits.
func (ms ModeStatus) OperationalModes() uint8 { return uint8(ms.raw.bits(53, 51)) }

// TrueHeading is the true/magnetic heading flag.
func (ms ModeStatus) TrueHeading() bool { return ms.raw.bit(50) }

// CallSignIsFlightID reports the CSID bit: set when the call sign field
// carries the call sign rather than a flight plan ID.
func (ms ModeStatus) CallSignIsFlightID() bool { return ms.raw.bit(49) }

// EmitterCategory returns the category index (0-39).
func (ms ModeStatus) EmitterCategory() uint8 {
	return uint8((ms.RawWord1() / 1600) % 40)
}

// CallSign decodes the 8-character base-40 call sign. Blank positions are
// kept so the result is always CallSignLength characters.
func (ms ModeStatus) CallSign() string {
	w1, w2, w3 := ms.RawWord1(), ms.RawWord2(), ms.RawWord3()
	digits := [CallSignLength]uint16{
		(w1 / 40) % 40,
		w1 % 40,
		(w2 / 1600) % 40,
		(w2 / 40) % 40,
		w2 % 40,
		(w3 / 1600) % 40,
		(w3 / 40) % 40,
		w3 % 40,
	}
	out := make([]byte, CallSignLength)
	for i, d := range digits {
		out[i] = base40Alphabet[d]
	}
	return string(out)
}

// Capabilities returns the "CDTI ACAS" capability text. The separating
// space is always present.
func (ms ModeStatus) Capabilities() string {
	cdti, acas := "", ""
	if ms.CDTI() {
		cdti = "CDTI"
	}
	if ms.ACAS() {
		acas = "ACAS"
	}
	return fmt.Sprintf("%s %s", cdti, acas)
}
