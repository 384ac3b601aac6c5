// Package storage persists decoded UAT downlinks.
package storage

import (
	"context"
	"strings"
	"time"

	"go978/internal/uat"
)

// Record is a flattened decoded downlink. Pointer fields are nil when the
// corresponding sub-structure or value is absent.
type Record struct {
	ReceivedAt time.Time `json:"received_at"`
	RawHex     string    `json:"raw_hex"`

	TypeCode  uint8  `json:"type_code"`
	Qualifier string `json:"address_qualifier"`
	Address   string `json:"address"`
	TISB      bool   `json:"tisb,omitempty"`

	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Altitude       *int     `json:"altitude_ft,omitempty"`
	AltitudeType   string   `json:"altitude_type,omitempty"`
	NIC            *uint8   `json:"nic,omitempty"`
	AirGround      string   `json:"air_ground,omitempty"`
	NSVelocity     *int     `json:"ns_velocity_kt,omitempty"`
	EWVelocity     *int     `json:"ew_velocity_kt,omitempty"`
	GroundSpeed    *int     `json:"ground_speed_kt,omitempty"`
	Track          *float64 `json:"track_deg,omitempty"`
	VerticalRate   *int     `json:"vertical_rate_fpm,omitempty"`
	UTCCoupled     *bool    `json:"utc_coupled,omitempty"`
	CallSign       string   `json:"callsign,omitempty"`
	Category       *uint8   `json:"emitter_category,omitempty"`
	Emergency      string   `json:"emergency,omitempty"`
	NACp           *uint8   `json:"nacp,omitempty"`
	NACv           *uint8   `json:"nacv,omitempty"`
	SIL            *uint8   `json:"sil,omitempty"`
	SecondaryAlt   *int     `json:"secondary_altitude_ft,omitempty"`
	HeadingOrTrack *uint16  `json:"target_heading_raw,omitempty"`
	TargetAltitude *uint32  `json:"target_altitude_raw,omitempty"`

	SignalStrength *float64 `json:"signal_strength,omitempty"`
	ErrorsFixed    *int     `json:"rs_errors,omitempty"`
}

// Store is implemented by every record archive.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	Close() error
}

func ptr[T any](v T) *T {
	return &v
}

// NewRecord flattens a decoded downlink.
func NewRecord(d *uat.Decoded, receivedAt time.Time, rawHex string) *Record {
	h := d.Message.Header
	rec := &Record{
		ReceivedAt: receivedAt,
		RawHex:     rawHex,
		TypeCode:   h.TypeCode(),
		Qualifier:  h.Qualifier().String(),
		Address:    h.AddressHex(),
		TISB:       h.Qualifier().IsTISB(),
	}

	if sv := d.Message.StateVector; sv != nil {
		lat, lng := sv.SignedPosition()
		rec.Latitude = &lat
		rec.Longitude = &lng
		rec.Altitude = ptr(sv.Altitude())
		rec.AltitudeType = sv.AltitudeType()
		rec.NIC = ptr(sv.NIC())
		rec.AirGround = sv.AirGround().String()
		if v, ok := sv.NSVelocity().Signed(); ok {
			rec.NSVelocity = &v
		}
		if v, ok := sv.EWVelocity().Signed(); ok {
			rec.EWVelocity = &v
		}
		if v, ok := sv.GroundSpeed(); ok {
			rec.GroundSpeed = &v
		}
		if v, ok := sv.GroundTrack(); ok {
			rec.Track = &v
		}
		if v, ok := sv.VerticalRate().Signed(); ok {
			rec.VerticalRate = &v
		}
		rec.UTCCoupled = ptr(sv.UTCCoupled())
	}

	if ms := d.Message.ModeStatus; ms != nil {
		rec.CallSign = strings.TrimSpace(ms.CallSign())
		rec.Category = ptr(ms.EmitterCategory())
		rec.Emergency = ms.Emergency().String()
		rec.NACp = ptr(ms.NACp())
		rec.NACv = ptr(ms.NACv())
		rec.SIL = ptr(ms.SIL())
	}

	if aux := d.Supplementary.AuxStateVector; aux != nil {
		rec.SecondaryAlt = ptr(aux.SecondaryAltitude())
	}
	if ts := d.Supplementary.TargetState; ts != nil {
		rec.HeadingOrTrack = ptr(ts.HeadingOrTrack())
		rec.TargetAltitude = ptr(ts.TargetAltitude())
	}

	return rec
}
