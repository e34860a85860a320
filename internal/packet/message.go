package packet

// Message is a full DNS packet: the unit of wire exchange. The wire-format
// section counts (QDCOUNT etc.) are never stored — they are recomputed
// from these slice lengths at encode time, and read-but-discarded at
// decode time.
type Message struct {
	ID         uint16
	Flags      Flags
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// Question is a single entry in a message's question section.
type Question struct {
	Name  Name
	Type  RRType
	Class Class
}

// ResourceRecord is a single owner/type/class/ttl/rdata tuple. RDLENGTH is
// never stored: it is recomputed from the serialized rdata at encode time.
type ResourceRecord struct {
	Name  Name
	Type  RRType
	Class Class
	TTL   uint32
	Data  RData
}

// RData is the typed, tagged-union record payload. The RR type recorded on
// the owning ResourceRecord is what selects which concrete implementation
// was produced by ParseRData; callers that need to branch on it do so with
// a type switch.
type RData interface {
	// Serialize returns the uncompressed wire encoding of the payload.
	Serialize() []byte
	rdata()
}

// ARecordData is an IPv4 host address (RFC 1035 §3.4.1).
type ARecordData struct {
	Addr [4]byte
}

func (ARecordData) rdata() {}

func (r ARecordData) Serialize() []byte {
	return append([]byte(nil), r.Addr[:]...)
}

// AAAARecordData is an IPv6 host address (RFC 3596).
type AAAARecordData struct {
	Addr [16]byte
}

func (AAAARecordData) rdata() {}

func (r AAAARecordData) Serialize() []byte {
	return append([]byte(nil), r.Addr[:]...)
}

// NSRecordData names an authoritative nameserver (RFC 1035 §3.3.11).
type NSRecordData struct {
	Target Name
}

func (NSRecordData) rdata() {}

func (r NSRecordData) Serialize() []byte {
	return SerializeName(r.Target)
}

// CNAMERecordData is a canonical-name alias (RFC 1035 §3.3.1).
type CNAMERecordData struct {
	Target Name
}

func (CNAMERecordData) rdata() {}

func (r CNAMERecordData) Serialize() []byte {
	return SerializeName(r.Target)
}

// OtherRecordData is the opaque fallback for every RR type this codec does
// not parse structurally. The raw rdata bytes are preserved verbatim so
// the record round-trips even though its meaning isn't interpreted.
type OtherRecordData struct {
	Raw []byte
}

func (OtherRecordData) rdata() {}

func (r OtherRecordData) Serialize() []byte {
	return append([]byte(nil), r.Raw...)
}
