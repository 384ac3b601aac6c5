package uat

import (
	"encoding/binary"
	"fmt"
)

// HeaderLength is the size of the MDB header in bytes.
const HeaderLength = 4

// AddressQualifier describes how the 24-bit address field should be read.
type AddressQualifier uint8

// Address qualifier codes. The field is 3 bits wide, so these are exhaustive.
const (
	QualifierADSBICAO AddressQualifier = iota
	QualifierADSBSelfAssigned
	QualifierTISBICAO
	QualifierTISBTrackFile
	QualifierSurfaceVehicle
	QualifierADSBFixedStation
	QualifierReserved6
	QualifierReserved7
)

var qualifierNames = [8]string{
	"ADS-B ICAO address",
	"ADS-B self-assigned address",
	"TIS-B ICAO address",
	"TIS-B track file address",
	"Surface vehicle",
	"ADS-B fixed ground station",
	"Reserved (6)",
	"Reserved (7)",
}

// String returns the human readable name of the qualifier.
func (q AddressQualifier) String() string {
	return qualifierNames[q&0x07]
}

// IsTISB reports whether the address came from a TIS-B service.
func (q AddressQualifier) IsTISB() bool {
	return q == QualifierTISBICAO || q == QualifierTISBTrackFile
}

// Header is the fixed 32-bit MDB header: type code (bits 31-27),
// address qualifier (bits 26-24) and address (bits 23-0).
type Header uint32

// NewHeader packs the three header fields back into a Header.
func NewHeader(typeCode uint8, qualifier AddressQualifier, address uint32) Header {
	return Header(uint32(typeCode&0x1F)<<27 | uint32(qualifier&0x07)<<24 | address&0xFFFFFF)
}

// DecodeHeader reads the header from the first four bytes of a downlink payload.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderLength {
		return 0, fmt.Errorf("%w: got %d bytes", ErrShortHeader, len(data))
	}
	return Header(binary.BigEndian.Uint32(data[:HeaderLength])), nil
}

// TypeCode returns the MDB type code (0-31).
func (h Header) TypeCode() uint8 {
	return uint8(bits64(uint64(h), 31, 27))
}

// Qualifier returns the address qualifier.
func (h Header) Qualifier() AddressQualifier {
	return AddressQualifier(bits64(uint64(h), 26, 24))
}

// Address returns the 24-bit aircraft address.
func (h Header) Address() uint32 {
	return uint32(bits64(uint64(h), 23, 0))
}

// AddressHex formats the address as six upper-case hex digits.
func (h Header) AddressHex() string {
	return fmt.Sprintf("%06X", h.Address())
}
