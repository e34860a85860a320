package packet

import (
	"errors"
	"fmt"
)

// Sentinel errors for the wire codec. These are wrapped with context via
// fmt.Errorf("...: %w", ...) at each layer so errors.Is keeps working.
var (
	ErrShortBuffer     = errors.New("buffer too short")
	ErrReservedZeroBit = errors.New("reserved Z bit set")
	ErrInvalidOpcode   = errors.New("invalid opcode")
	ErrInvalidRCode    = errors.New("invalid rcode")
	ErrInvalidClass    = errors.New("invalid class")
	ErrLabelPointer    = errors.New("invalid label pointer type")
	ErrPointerOOB      = errors.New("label pointer out of bounds")
	ErrPointerLoop     = errors.New("label pointer loop detected")
	ErrLabelTooLong    = errors.New("label exceeds 63 bytes")
	ErrNameTooLong     = errors.New("name exceeds 255 bytes")
	ErrRDLengthMismatch = errors.New("rdata length does not match record type")
)

// Partial captures whatever header fields were successfully decoded before
// a FormatError was raised. It is used by the server layer to synthesize a
// FormErr reply (see ErrorResponse) without re-parsing the message.
type Partial struct {
	ID    uint16
	Flags Flags
}

// FormatError is returned for any malformed-input condition encountered
// while decoding a Message. It always wraps an underlying sentinel error
// and may carry a Partial if the header parsed successfully before the
// failure occurred further into the message.
type FormatError struct {
	Msg     string
	Err     error
	Partial *Partial
}

func (e *FormatError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("dns: format error: %v", e.Err)
	}
	return fmt.Sprintf("dns: format error: %s: %v", e.Msg, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func newFormatError(msg string, err error) *FormatError {
	return &FormatError{Msg: msg, Err: err}
}

// withPartial attaches header context to a FormatError, so the server can
// still answer the client even though the rest of the message was bad.
func (e *FormatError) withPartial(p *Partial) *FormatError {
	e.Partial = p
	return e
}

// ErrorResponse builds a FormErr reply Message from a Partial, or returns
// nil if no header was successfully decoded (the caller should drop the
// datagram silently in that case).
func ErrorResponse(p *Partial) *Message {
	if p == nil {
		return nil
	}
	return &Message{
		ID: p.ID,
		Flags: Flags{
			QR:     true,
			Opcode: p.Flags.Opcode,
			RD:     p.Flags.RD,
			CD:     p.Flags.CD,
			RCode:  RCodeFormErr,
		},
	}
}
