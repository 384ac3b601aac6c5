package uat

import (
	"fmt"
	"strings"
)

// PlaceholderMarker is rendered in place of the primary record for type
// codes other than 0 and 1.
const PlaceholderMarker = "ASET"

const labelWidth = 20

func writeField(b *strings.Builder, label string, value interface{}) {
	fmt.Fprintf(b, " %-*s%v\n", labelWidth, label+":", value)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// String renders the HDR block.
func (h Header) String() string {
	var b strings.Builder
	b.WriteString("HDR:\n")
	writeField(&b, "MDB Type", h.TypeCode())
	writeField(&b, "Address", fmt.Sprintf("%s (%s)", h.AddressHex(), h.Qualifier()))
	return b.String()
}

func velocityLine(v Velocity, positive, negative string) string {
	if v.Kind != VelocityValid {
		return v.String()
	}
	dir := positive
	if v.Negative {
		dir = negative
	}
	return fmt.Sprintf("%s (%s)", v, dir)
}

// String renders the SV block.
func (sv StateVector) String() string {
	var b strings.Builder
	b.WriteString("SV:\n")
	writeField(&b, "NIC", sv.NIC())
	writeField(&b, "Latitude", fmt.Sprintf("%.4f %s", sv.Latitude(), sv.LatitudeHemisphere()))
	writeField(&b, "Longitude", fmt.Sprintf("%.4f %s", sv.Longitude(), sv.LongitudeHemisphere()))
	writeField(&b, "Altitude", fmt.Sprintf("%d ft (%s)", sv.Altitude(), sv.AltitudeType()))
	writeField(&b, "Air/ground", sv.AirGround())
	writeField(&b, "N/S velocity", velocityLine(sv.NSVelocity(), "north", "south"))
	writeField(&b, "E/W velocity", velocityLine(sv.EWVelocity(), "east", "west"))
	track, speed := "", ""
	if t, ok := sv.GroundTrack(); ok {
		track = fmt.Sprintf("%.1f", t)
	}
	if s, ok := sv.GroundSpeed(); ok {
		speed = fmt.Sprintf("%d kt", s)
	}
	writeField(&b, "Track", track)
	writeField(&b, "Speed", speed)
	writeField(&b, "Vertical rate", sv.VerticalRate())
	writeField(&b, "UTC coupling", yesNo(sv.UTCCoupled()))
	writeField(&b, "TIS-B site ID", sv.TISBSiteID())
	return b.String()
}

// String renders the MS block.
func (ms ModeStatus) String() string {
	var b strings.Builder
	b.WriteString("MS:\n")
	cat := ms.EmitterCategory()
	writeField(&b, "Emitter category", fmt.Sprintf("%d (%s)", cat, EmitterCategoryName(cat)))
	writeField(&b, "Callsign", ms.CallSign())
	csType := "flight plan ID"
	if ms.CallSignIsFlightID() {
		csType = "call sign"
	}
	writeField(&b, "Callsign type", csType)
	writeField(&b, "Emergency status", fmt.Sprintf("%d (%s)", ms.Emergency(), ms.Emergency()))
	writeField(&b, "UAT version", ms.Version())
	writeField(&b, "SIL", ms.SIL())
	writeField(&b, "Transmit MSO", ms.TransmitMSO())
	writeField(&b, "NACp", ms.NACp())
	writeField(&b, "NACv", ms.NACv())
	writeField(&b, "NICbaro", boolDigit(ms.NICBaro()))
	writeField(&b, "Capabilities", ms.Capabilities())
	writeField(&b, "Active modes", fmt.Sprintf("%03b", ms.OperationalModes()))
	heading := "magnetic"
	if ms.TrueHeading() {
		heading = "true"
	}
	writeField(&b, "Heading type", heading)
	return b.String()
}

func boolDigit(v bool) int {
	if v {
		return 1
	}
	return 0
}

// String renders the AUXSV fragment.
func (a AuxStateVector) String() string {
	var b strings.Builder
	b.WriteString("AUXSV:\n")
	writeField(&b, "Secondary altitude", fmt.Sprintf("%d ft", a.SecondaryAltitude()))
	return b.String()
}

// String renders the TS fragment with raw field values.
func (t TargetState) String() string {
	var b strings.Builder
	b.WriteString("TS:\n")
	writeField(&b, "Heading/track raw", t.HeadingOrTrack())
	writeField(&b, "Target alt. raw", t.TargetAltitude())
	return b.String()
}

// String renders the primary record. Only type codes 0 and 1 are rendered
// field by field; everything else is the placeholder marker.
func (m *Message) String() string {
	switch m.TypeCode() {
	case 0, 1:
		if m.StateVector == nil {
			return m.Header.String()
		}
		if m.ModeStatus != nil {
			return m.Header.String() + m.StateVector.String() + m.ModeStatus.String()
		}
		return m.Header.String() + m.StateVector.String() + "\n"
	default:
		return PlaceholderMarker + "\n"
	}
}

// Report renders the primary record followed by any supplementary
// fragments.
func (d *Decoded) Report() string {
	var b strings.Builder
	b.WriteString(d.Message.String())
	if d.Supplementary.AuxStateVector != nil {
		b.WriteString(d.Supplementary.AuxStateVector.String())
	}
	if d.Supplementary.TargetState != nil {
		b.WriteString(d.Supplementary.TargetState.String())
	}
	return b.String()
}
