package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeFromNumericRoundTrip(t *testing.T) {
	for _, o := range []Opcode{OpcodeQuery, OpcodeIQuery, OpcodeStatus, OpcodeNotify, OpcodeUpdate} {
		got, err := OpcodeFromNumeric(o.ToNumeric())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
}

func TestOpcodeFromNumericRejectsUnassigned(t *testing.T) {
	_, err := OpcodeFromNumeric(3)
	assert.ErrorIs(t, err, ErrInvalidOpcode)
}

func TestRCodeFromNumericRoundTrip(t *testing.T) {
	codes := []RCode{
		RCodeNoError, RCodeFormErr, RCodeServFail, RCodeNXDomain, RCodeNotImp,
		RCodeRefused, RCodeYXDomain, RCodeYXRRSet, RCodeNXRRSet, RCodeNotAuth, RCodeNotZone,
	}
	for _, r := range codes {
		got, err := RCodeFromNumeric(r.ToNumeric())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestRCodeFromNumericRejectsUnassigned(t *testing.T) {
	_, err := RCodeFromNumeric(15)
	assert.ErrorIs(t, err, ErrInvalidRCode)
}

func TestClassFromNumericRoundTrip(t *testing.T) {
	for _, c := range []ClassCode{ClassIN, ClassCS, ClassCH, ClassHS, ClassNONE, ClassANY} {
		got, err := ClassFromNumeric(uint16(c))
		require.NoError(t, err)
		assert.Equal(t, c, got.Code())
		assert.False(t, got.IsEDNSPayloadSize())
	}
}

func TestClassFromNumericRejectsUnknown(t *testing.T) {
	_, err := ClassFromNumeric(12345)
	assert.ErrorIs(t, err, ErrInvalidClass)
}

// TestEDNSPayloadSizeClassRoundTrip is the OPT-record boundary behavior:
// the class field of an OPT record is reinterpreted as a UDP payload size
// and must round-trip through ToNumeric unchanged.
func TestEDNSPayloadSizeClassRoundTrip(t *testing.T) {
	c := NewEDNSPayloadSizeClass(4096)
	assert.True(t, c.IsEDNSPayloadSize())
	assert.Equal(t, uint16(4096), c.EDNSPayloadSize())
	assert.Equal(t, uint16(4096), c.ToNumeric())
}

func TestRRTypeFromNumericPreservesUnknownValues(t *testing.T) {
	const unassigned = 65280
	got := RRTypeFromNumeric(unassigned)
	assert.Equal(t, RRType(unassigned), got)
	assert.Equal(t, "TYPE65280", got.String())
}
