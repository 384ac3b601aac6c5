package dump978

import (
	"time"
)

// Channel prefixes used by dump978 raw output
const (
	UplinkPrefix   = '+'
	DownlinkPrefix = '-'
)

// Channel identifies the direction of a raw UAT frame
type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelUplink
	ChannelDownlink
)

// String returns the channel name
func (c Channel) String() string {
	switch c {
	case ChannelUplink:
		return "uplink"
	case ChannelDownlink:
		return "downlink"
	default:
		return "unknown"
	}
}

// Frame represents one parsed dump978 line
type Frame struct {
	Channel Channel
	Payload []byte
	// Raw is the line without the channel prefix.
	Raw string

	// Metadata from the ;key=value; suffix
	ErrorsCorrected int
	HasErrors       bool
	SignalStrength  float64
	HasSignal       bool
	Timestamp       time.Time
	Extra           map[string]string
}

// IsDownlink reports whether the frame is an ADS-B downlink
func (f *Frame) IsDownlink() bool {
	return f.Channel == ChannelDownlink
}

// HexPayload returns the hex text of the payload without metadata
func (f *Frame) HexPayload() string {
	for i := 0; i < len(f.Raw); i++ {
		if f.Raw[i] == ';' {
			return f.Raw[:i]
		}
	}
	return f.Raw
}

// ReceivedAt returns the frame timestamp, or fallback when the line carried none
func (f *Frame) ReceivedAt(fallback time.Time) time.Time {
	if f.Timestamp.IsZero() {
		return fallback
	}
	return f.Timestamp
}
