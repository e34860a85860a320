package packet

import "fmt"

// header layout, RFC 1035 section 4.1.1:
//
//	ID(2) Flags(2) QDCOUNT(2) ANCOUNT(2) NSCOUNT(2) ARCOUNT(2)
const headerLength = 12

// Decode parses a complete DNS message from buf. On any malformed-input
// condition it returns a *FormatError; if the 12-byte header parsed
// successfully before the failure, that error's Partial is populated so
// the caller can still synthesize a FormErr reply via ErrorResponse.
func Decode(buf []byte) (*Message, error) {
	if len(buf) < headerLength {
		return nil, newFormatError("header", fmt.Errorf("length %d: %w", len(buf), ErrShortBuffer))
	}

	id, _ := ReadUint16(buf, 0)
	flags, err := DecodeFlags([2]byte{buf[2], buf[3]})
	if err != nil {
		// Flags didn't parse, so there is no well-formed Flags to report in
		// the Partial. The ID alone is not enough to build a reply.
		return nil, err
	}

	partial := &Partial{ID: id, Flags: flags}

	qdcount, _ := ReadUint16(buf, 4)
	ancount, _ := ReadUint16(buf, 6)
	nscount, _ := ReadUint16(buf, 8)
	arcount, _ := ReadUint16(buf, 10)

	pos := headerLength

	questions := make([]Question, 0, qdcount)
	for i := 0; i < int(qdcount); i++ {
		q, next, err := ParseQuestion(buf, pos)
		if err != nil {
			return nil, attachPartial(err, partial)
		}
		questions = append(questions, q)
		pos = next
	}

	answers, pos, err := parseRRSection(buf, pos, int(ancount))
	if err != nil {
		return nil, attachPartial(err, partial)
	}

	authority, pos, err := parseRRSection(buf, pos, int(nscount))
	if err != nil {
		return nil, attachPartial(err, partial)
	}

	additional, pos, err := parseRRSection(buf, pos, int(arcount))
	if err != nil {
		return nil, attachPartial(err, partial)
	}

	return &Message{
		ID:         id,
		Flags:      flags,
		Questions:  questions,
		Answers:    answers,
		Authority:  authority,
		Additional: additional,
	}, nil
}

func parseRRSection(buf []byte, pos int, count int) ([]ResourceRecord, int, error) {
	records := make([]ResourceRecord, 0, count)
	for i := 0; i < count; i++ {
		rr, next, err := ParseResourceRecord(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rr)
		pos = next
	}
	return records, pos, nil
}

// attachPartial tags err with partial if err is a *FormatError without one
// already. ParseQuestion/ParseResourceRecord/ParseRData already return
// *FormatError via newFormatError, so this is always a type assertion, not
// a wrap.
func attachPartial(err error, partial *Partial) error {
	if fe, ok := err.(*FormatError); ok && fe.Partial == nil {
		return fe.withPartial(partial)
	}
	return err
}

// Encode serializes a Message to wire format. Section counts are computed
// from the slice lengths; there is no other source of truth for them.
func Encode(m *Message) ([]byte, error) {
	if len(m.Questions) > 0xffff || len(m.Answers) > 0xffff ||
		len(m.Authority) > 0xffff || len(m.Additional) > 0xffff {
		return nil, fmt.Errorf("packet: section exceeds 65535 entries")
	}

	out := make([]byte, 0, 512)
	out = PutUint16(out, m.ID)
	flagBytes := m.Flags.Encode()
	out = append(out, flagBytes[0], flagBytes[1])
	out = PutUint16(out, uint16(len(m.Questions)))
	out = PutUint16(out, uint16(len(m.Answers)))
	out = PutUint16(out, uint16(len(m.Authority)))
	out = PutUint16(out, uint16(len(m.Additional)))

	for _, q := range m.Questions {
		out = append(out, SerializeQuestion(q)...)
	}
	for _, section := range [][]ResourceRecord{m.Answers, m.Authority, m.Additional} {
		for _, rr := range section {
			encoded, err := SerializeResourceRecord(rr)
			if err != nil {
				return nil, err
			}
			out = append(out, encoded...)
		}
	}

	return out, nil
}
