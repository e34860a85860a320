package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorResponseBuildsFormErrFromPartial(t *testing.T) {
	p := &Partial{
		ID:    0x55aa,
		Flags: Flags{Opcode: OpcodeQuery, RD: true, CD: true},
	}

	reply := ErrorResponse(p)
	if assert.NotNil(t, reply) {
		assert.Equal(t, p.ID, reply.ID)
		assert.True(t, reply.Flags.QR)
		assert.Equal(t, OpcodeQuery, reply.Flags.Opcode)
		assert.True(t, reply.Flags.RD)
		assert.True(t, reply.Flags.CD)
		assert.Equal(t, RCodeFormErr, reply.Flags.RCode)
	}
}

func TestErrorResponseNilPartialMeansDrop(t *testing.T) {
	assert.Nil(t, ErrorResponse(nil))
}

func TestFormatErrorUnwrapsSentinel(t *testing.T) {
	fe := newFormatError("test", ErrShortBuffer)
	assert.ErrorIs(t, fe, ErrShortBuffer)
	assert.Contains(t, fe.Error(), "test")
}

func TestFormatErrorWithPartialAttachesPartial(t *testing.T) {
	fe := newFormatError("test", ErrShortBuffer)
	first := &Partial{ID: 1}
	fe.withPartial(first)
	assert.Same(t, first, fe.Partial)
}
