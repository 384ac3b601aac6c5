// Package uat decodes UAT ADS-B downlink payloads into header, state vector,
// mode status, auxiliary state vector and target state records, and renders
// them as text reports.
package uat

import (
	"errors"
	"fmt"
)

var (
	// ErrShortHeader is returned when fewer than four bytes are available.
	ErrShortHeader = errors.New("payload too short for header")
	// ErrTruncated is returned when the payload is shorter than its type
	// code's layout requires.
	ErrTruncated = errors.New("truncated payload")
)

// Message is the primary decoded record. StateVector and ModeStatus are nil
// when the layout for the type code does not include them.
type Message struct {
	Header      Header
	StateVector *StateVector
	ModeStatus  *ModeStatus
}

// TypeCode is shorthand for Header.TypeCode.
func (m *Message) TypeCode() uint8 {
	return m.Header.TypeCode()
}

// Supplementary holds the records decoded alongside, but not part of, the
// primary message.
type Supplementary struct {
	AuxStateVector *AuxStateVector
	TargetState    *TargetState
}

// Empty reports whether no supplementary record was decoded.
func (s Supplementary) Empty() bool {
	return s.AuxStateVector == nil && s.TargetState == nil
}

// Decoded is the full result of decoding one downlink payload.
type Decoded struct {
	Message       Message
	Supplementary Supplementary
}

// Decode decodes a raw downlink payload. It is a pure function of data.
func Decode(data []byte) (*Decoded, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	layout := ResolveLayout(header.TypeCode())
	if need := layout.RequiredLength(); len(data) < need {
		return nil, fmt.Errorf("%w: type %d needs %d bytes, got %d",
			ErrTruncated, header.TypeCode(), need, len(data))
	}

	d := &Decoded{Message: Message{Header: header}}

	if layout.StateVector.Present() {
		sv := NewStateVector(layout.StateVector.slice(data))
		d.Message.StateVector = &sv
	}
	if layout.ModeStatus.Present() {
		ms := NewModeStatus(layout.ModeStatus.slice(data))
		d.Message.ModeStatus = &ms
	}
	if layout.AuxStateVector.Present() {
		aux := NewAuxStateVector(layout.AuxStateVector.slice(data))
		d.Supplementary.AuxStateVector = &aux
	}
	if layout.TargetState.Present() {
		ts := NewTargetState(layout.TargetState.slice(data))
		d.Supplementary.TargetState = &ts
	}

	return d, nil
}
