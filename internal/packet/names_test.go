package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameOf(labels ...string) Name {
	n := Name{}
	for _, l := range labels {
		n.Labels = append(n.Labels, []byte(l))
	}
	return n
}

func TestSerializeDeserializeNameRoundTrip(t *testing.T) {
	cases := []Name{
		nameOf(),
		nameOf("arpa"),
		nameOf("f", "isi", "arpa"),
		nameOf("a"), // length-1 label
		nameOf(string(make([]byte, 63))), // length-63 label, the maximum
	}

	for _, n := range cases {
		wire := SerializeName(n)
		got, next, err := DeserializeName(wire, 0)
		require.NoError(t, err)
		assert.Equal(t, len(wire), next)
		assert.Equal(t, n.Labels, got.Labels)
	}
}

// TestDeserializeNameRFC1035PointerExample reproduces the compression
// example from RFC 1035 section 4.1.4: F.ISI.ARPA at offset 20,
// FOO.F.ISI.ARPA at offset 40 referencing it, and a bare pointer at
// offset 64 referencing it again.
func TestDeserializeNameRFC1035PointerExample(t *testing.T) {
	buf := make([]byte, 66)

	// offset 20: F . ISI . ARPA . <root>
	copy(buf[20:], []byte{1, 'F', 3, 'I', 'S', 'I', 4, 'A', 'R', 'P', 'A', 0})

	// offset 40: FOO, then a pointer back to offset 20
	copy(buf[40:], []byte{3, 'F', 'O', 'O', 0xC0, 20})

	// offset 64: a bare pointer to offset 20
	copy(buf[64:], []byte{0xC0, 20})

	n1, next1, err := DeserializeName(buf, 20)
	require.NoError(t, err)
	assert.Equal(t, nameOf("F", "ISI", "ARPA").Labels, n1.Labels)
	assert.Equal(t, 32, next1)

	n2, next2, err := DeserializeName(buf, 40)
	require.NoError(t, err)
	assert.Equal(t, nameOf("FOO", "F", "ISI", "ARPA").Labels, n2.Labels)
	assert.Equal(t, 46, next2)

	n3, next3, err := DeserializeName(buf, 64)
	require.NoError(t, err)
	assert.Equal(t, nameOf("F", "ISI", "ARPA").Labels, n3.Labels)
	assert.Equal(t, 66, next3)
}

func TestDeserializeNameRejectsSelfPointer(t *testing.T) {
	buf := []byte{0xC0, 0x00}
	_, _, err := DeserializeName(buf, 0)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrPointerLoop)
}

func TestDeserializeNameRejectsTwoNodePointerCycle(t *testing.T) {
	buf := []byte{0xC0, 0x02, 0xC0, 0x00}
	_, _, err := DeserializeName(buf, 0)
	assert.ErrorIs(t, err, ErrPointerLoop)
}

func TestDeserializeNameRejectsPointerBeyondBufferEnd(t *testing.T) {
	buf := []byte{0xC0, 0xFF}
	_, _, err := DeserializeName(buf, 0)
	assert.ErrorIs(t, err, ErrPointerOOB)
}

func TestDeserializeNameRejectsReservedLengthBits(t *testing.T) {
	// Top bits 01 and 10 are neither a label length nor a pointer tag.
	for _, b := range []byte{0x40, 0x80} {
		_, _, err := DeserializeName([]byte{b, 0x00}, 0)
		assert.ErrorIs(t, err, ErrLabelPointer)
	}
}

func TestSerializeNamePanicsOnOversizedLabel(t *testing.T) {
	n := nameOf(string(make([]byte, 64)))
	assert.Panics(t, func() { SerializeName(n) })
}
