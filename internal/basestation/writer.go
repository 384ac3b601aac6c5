// Package basestation renders decoded downlinks as BaseStation (SBS-1) CSV.
package basestation

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go978/internal/storage"
	"go978/internal/uat"
)

// BaseStation message types
const (
	MessageMSG = "MSG" // Transmission
)

// BaseStation transmission types
const (
	TransmissionIDCategory = 1 // Aircraft ID and category
	TransmissionSurface    = 2 // Surface position
	TransmissionAirborne   = 3 // Airborne position
	TransmissionVelocity   = 4 // Airborne velocity
)

// Message is one BaseStation CSV line
type Message struct {
	MessageType      string
	TransmissionType int
	SessionID        int
	AircraftID       int
	HexIdent         string
	FlightID         int
	DateGenerated    time.Time
	TimeGenerated    time.Time
	DateLogged       time.Time
	TimeLogged       time.Time
	Callsign         string
	Altitude         string
	GroundSpeed      string
	Track            string
	Latitude         string
	Longitude        string
	VerticalRate     string
	Squawk           string
	Alert            string
	Emergency        string
	SPI              string
	IsOnGround       string
}

// Writer writes records in BaseStation format
type Writer struct {
	out       io.Writer
	logger    *logrus.Logger
	sessionID int
	now       func() time.Time
	mu        sync.Mutex
}

// NewWriter creates a BaseStation writer on out
func NewWriter(out io.Writer, logger *logrus.Logger) *Writer {
	return &Writer{
		out:       out,
		logger:    logger,
		sessionID: 1,
		now:       time.Now,
	}
}

// WriteRecord writes the lines a record maps to. Records without state
// vector or call sign produce no output.
func (w *Writer) WriteRecord(rec *storage.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}

	msgs := w.Convert(rec)
	if len(msgs) == 0 {
		w.logger.WithField("address", rec.Address).Debug("Record has no BaseStation mapping")
		return nil
	}

	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(FormatCSV(msg))
		b.WriteByte('\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return fmt.Errorf("failed to write BaseStation output: %w", err)
	}
	return nil
}

// Convert maps a record to BaseStation transmissions: a position message,
// a velocity message when speed or vertical rate is known, and an
// identification message when a call sign is present.
func (w *Writer) Convert(rec *storage.Record) []*Message {
	logged := w.now()
	id, _ := strconv.ParseInt(rec.Address, 16, 64)

	base := func(transmission int) *Message {
		return &Message{
			MessageType:      MessageMSG,
			TransmissionType: transmission,
			SessionID:        w.sessionID,
			AircraftID:       int(id),
			HexIdent:         rec.Address,
			FlightID:         int(id),
			DateGenerated:    rec.ReceivedAt,
			TimeGenerated:    rec.ReceivedAt,
			DateLogged:       logged,
			TimeLogged:       logged,
		}
	}

	var msgs []*Message

	if rec.Latitude != nil && rec.Longitude != nil {
		onGround := rec.AirGround == uat.AirGroundSurface.String()
		transmission := TransmissionAirborne
		if onGround {
			transmission = TransmissionSurface
		}

		pos := base(transmission)
		if rec.Altitude != nil {
			pos.Altitude = strconv.Itoa(*rec.Altitude)
		}
		// A zero position code is broadcast when no fix is available.
		if *rec.Latitude != 0 || *rec.Longitude != 0 {
			pos.Latitude = fmt.Sprintf("%.5f", *rec.Latitude)
			pos.Longitude = fmt.Sprintf("%.5f", *rec.Longitude)
		}
		pos.IsOnGround = flag(onGround)
		if rec.Emergency != "" {
			pos.Emergency = flag(rec.Emergency != uat.EmergencyNone.String())
		}
		msgs = append(msgs, pos)

		if rec.GroundSpeed != nil || rec.VerticalRate != nil {
			vel := base(TransmissionVelocity)
			if rec.GroundSpeed != nil {
				vel.GroundSpeed = strconv.Itoa(*rec.GroundSpeed)
			}
			if rec.Track != nil {
				vel.Track = fmt.Sprintf("%.1f", *rec.Track)
			}
			if rec.VerticalRate != nil {
				vel.VerticalRate = strconv.Itoa(*rec.VerticalRate)
			}
			msgs = append(msgs, vel)
		}
	}

	if rec.CallSign != "" {
		ident := base(TransmissionIDCategory)
		ident.Callsign = rec.CallSign
		msgs = append(msgs, ident)
	}

	return msgs
}

func flag(v bool) string {
	if v {
		return "-1"
	}
	return "0"
}

// FormatCSV formats a BaseStation message as CSV
func FormatCSV(msg *Message) string {
	fields := []string{
		msg.MessageType,
		strconv.Itoa(msg.TransmissionType),
		strconv.Itoa(msg.SessionID),
		strconv.Itoa(msg.AircraftID),
		msg.HexIdent,
		strconv.Itoa(msg.FlightID),
		msg.DateGenerated.Format("2006/01/02"),
		msg.TimeGenerated.Format("15:04:05.000"),
		msg.DateLogged.Format("2006/01/02"),
		msg.TimeLogged.Format("15:04:05.000"),
		msg.Callsign,
		msg.Altitude,
		msg.GroundSpeed,
		msg.Track,
		msg.Latitude,
		msg.Longitude,
		msg.VerticalRate,
		msg.Squawk,
		msg.Alert,
		msg.Emergency,
		msg.SPI,
		msg.IsOnGround,
	}

	return strings.Join(fields, ",")
}
