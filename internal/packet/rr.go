package packet

import "fmt"

// ParseQuestion decodes a single question-section entry: name, then qtype
// and qclass as two big-endian uint16s. Both numerics must decode to valid
// enum values.
func ParseQuestion(buf []byte, position int) (Question, int, error) {
	name, pos, err := DeserializeName(buf, position)
	if err != nil {
		return Question{}, 0, err
	}

	qtypeNum, err := ReadUint16(buf, pos)
	if err != nil {
		return Question{}, 0, newFormatError("question type", err)
	}
	qclassNum, err := ReadUint16(buf, pos+2)
	if err != nil {
		return Question{}, 0, newFormatError("question class", err)
	}

	class, err := ClassFromNumeric(qclassNum)
	if err != nil {
		return Question{}, 0, newFormatError("question class", err)
	}

	return Question{
		Name:  name,
		Type:  RRTypeFromNumeric(qtypeNum),
		Class: class,
	}, pos + 4, nil
}

// SerializeQuestion is the inverse of ParseQuestion.
func SerializeQuestion(q Question) []byte {
	out := SerializeName(q.Name)
	out = PutUint16(out, q.Type.ToNumeric())
	out = PutUint16(out, q.Class.ToNumeric())
	return out
}

// ParseResourceRecord decodes name, type, class, ttl, rdlength, and rdata.
// If type is OPT, the class field is reinterpreted as an EDNS UDP payload
// size (RFC 6891) rather than validated against the ordinary class set.
func ParseResourceRecord(buf []byte, position int) (ResourceRecord, int, error) {
	name, pos, err := DeserializeName(buf, position)
	if err != nil {
		return ResourceRecord{}, 0, err
	}

	if pos+10 > len(buf) {
		return ResourceRecord{}, 0, newFormatError("rr fixed fields", fmt.Errorf("at %d: %w", pos, ErrShortBuffer))
	}

	typeNum, _ := ReadUint16(buf, pos)
	classNum, _ := ReadUint16(buf, pos+2)
	ttl, _ := ReadUint32(buf, pos+4)
	rdlength, _ := ReadUint16(buf, pos+8)
	pos += 10

	rrType := RRTypeFromNumeric(typeNum)

	var class Class
	if rrType == RRTypeOPT {
		class = NewEDNSPayloadSizeClass(classNum)
	} else {
		class, err = ClassFromNumeric(classNum)
		if err != nil {
			return ResourceRecord{}, 0, newFormatError("rr class", err)
		}
	}

	data, pos, err := ParseRData(buf, pos, rrType, rdlength)
	if err != nil {
		return ResourceRecord{}, 0, err
	}

	return ResourceRecord{
		Name:  name,
		Type:  rrType,
		Class: class,
		TTL:   ttl,
		Data:  data,
	}, pos, nil
}

// SerializeResourceRecord is the inverse of ParseResourceRecord. RDLENGTH
// is always computed from the serialized payload, never read from the
// in-memory record (there isn't one to read from).
func SerializeResourceRecord(rr ResourceRecord) ([]byte, error) {
	out := SerializeName(rr.Name)
	out = PutUint16(out, rr.Type.ToNumeric())
	out = PutUint16(out, rr.Class.ToNumeric())
	out = PutUint32(out, rr.TTL)

	rdata := rr.Data.Serialize()
	if len(rdata) > 0xffff {
		return nil, fmt.Errorf("packet: rdata for %s %s is %d bytes, exceeds 65535", rr.Name, rr.Type, len(rdata))
	}
	out = PutUint16(out, uint16(len(rdata)))
	out = append(out, rdata...)
	return out, nil
}
