package packet

// Flags is the packed 16-bit DNS header flag word, decoded left to right:
//
//	byte 0: QR(1) Opcode(4) AA(1) TC(1) RD(1)
//	byte 1: RA(1) Z(1, reserved) AD(1) CD(1) RCode(4)
type Flags struct {
	QR     bool
	Opcode Opcode
	AA     bool
	TC     bool
	RD     bool
	RA     bool
	AD     bool
	CD     bool
	RCode  RCode
}

// DecodeFlags parses the two-byte flag word. The reserved Z bit must be
// zero; a query with it set is rejected rather than silently masked, per
// RFC 1035 and spec: it's the one header bit a conformant sender never
// needs to use.
func DecodeFlags(b [2]byte) (Flags, error) {
	if b[1]&0x40 != 0 {
		return Flags{}, newFormatError("flags decode", ErrReservedZeroBit)
	}

	opcode, err := OpcodeFromNumeric((b[0] >> 3) & 0x0f)
	if err != nil {
		return Flags{}, newFormatError("flags decode", err)
	}
	rcode, err := RCodeFromNumeric(b[1] & 0x0f)
	if err != nil {
		return Flags{}, newFormatError("flags decode", err)
	}

	return Flags{
		QR:     b[0]&0x80 != 0,
		Opcode: opcode,
		AA:     b[0]&0x04 != 0,
		TC:     b[0]&0x02 != 0,
		RD:     b[0]&0x01 != 0,
		RA:     b[1]&0x80 != 0,
		AD:     b[1]&0x20 != 0,
		CD:     b[1]&0x10 != 0,
		RCode:  rcode,
	}, nil
}

// Encode packs Flags back into its two-byte wire form. Only defined bits
// are ever set; the reserved Z bit is always emitted zero.
func (f Flags) Encode() [2]byte {
	var b [2]byte
	if f.QR {
		b[0] |= 0x80
	}
	b[0] |= (f.Opcode.ToNumeric() & 0x0f) << 3
	if f.AA {
		b[0] |= 0x04
	}
	if f.TC {
		b[0] |= 0x02
	}
	if f.RD {
		b[0] |= 0x01
	}
	if f.RA {
		b[1] |= 0x80
	}
	if f.AD {
		b[1] |= 0x20
	}
	if f.CD {
		b[1] |= 0x10
	}
	b[1] |= f.RCode.ToNumeric() & 0x0f
	return b
}
