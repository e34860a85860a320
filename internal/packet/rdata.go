package packet

import "fmt"

// ParseRData parses exactly rdlength bytes at position within the full
// message buffer, dispatching on rrType. Name-bearing variants (NS, CNAME)
// parse a name that may itself use pointer compression back into the rest
// of the message, per spec; the returned position from that inner name
// parse is discarded in favor of position+rdlength, which is always the
// authoritative boundary of this record's rdata.
func ParseRData(buf []byte, position int, rrType RRType, rdlength uint16) (RData, int, error) {
	if position < 0 || position+int(rdlength) > len(buf) {
		return nil, 0, newFormatError("rdata decode", fmt.Errorf("rdlength %d at %d: %w", rdlength, position, ErrShortBuffer))
	}

	switch rrType {
	case RRTypeA:
		if rdlength != 4 {
			return nil, 0, newFormatError("A rdata", fmt.Errorf("rdlength %d: %w", rdlength, ErrRDLengthMismatch))
		}
		var rr ARecordData
		copy(rr.Addr[:], buf[position:position+4])
		return rr, position + int(rdlength), nil

	case RRTypeAAAA:
		if rdlength != 16 {
			return nil, 0, newFormatError("AAAA rdata", fmt.Errorf("rdlength %d: %w", rdlength, ErrRDLengthMismatch))
		}
		var rr AAAARecordData
		copy(rr.Addr[:], buf[position:position+16])
		return rr, position + int(rdlength), nil

	case RRTypeNS:
		name, _, err := DeserializeName(buf, position)
		if err != nil {
			return nil, 0, err
		}
		return NSRecordData{Target: name}, position + int(rdlength), nil

	case RRTypeCNAME:
		name, _, err := DeserializeName(buf, position)
		if err != nil {
			return nil, 0, err
		}
		return CNAMERecordData{Target: name}, position + int(rdlength), nil

	default:
		raw := make([]byte, rdlength)
		copy(raw, buf[position:position+int(rdlength)])
		return OtherRecordData{Raw: raw}, position + int(rdlength), nil
	}
}
