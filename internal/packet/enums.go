package packet

import "fmt"

// Opcode is the 4-bit DNS operation code (header bits 11-14).
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
	OpcodeNotify Opcode = 4
	OpcodeUpdate Opcode = 5
)

var opcodeNames = map[Opcode]string{
	OpcodeQuery:  "QUERY",
	OpcodeIQuery: "IQUERY",
	OpcodeStatus: "STATUS",
	OpcodeNotify: "NOTIFY",
	OpcodeUpdate: "UPDATE",
}

// OpcodeFromNumeric decodes a 4-bit opcode value. Unrecognized values are a
// format error: unlike RRType, the opcode space is small and closed.
func OpcodeFromNumeric(n uint8) (Opcode, error) {
	if _, ok := opcodeNames[Opcode(n)]; !ok {
		return 0, fmt.Errorf("opcode %d: %w", n, ErrInvalidOpcode)
	}
	return Opcode(n), nil
}

func (o Opcode) ToNumeric() uint8 { return uint8(o) }

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE%d", uint8(o))
}

// RCode is the 4-bit DNS response code (low 4 bits of the second flag byte).
type RCode uint8

const (
	RCodeNoError  RCode = 0
	RCodeFormErr  RCode = 1
	RCodeServFail RCode = 2
	RCodeNXDomain RCode = 3
	RCodeNotImp   RCode = 4
	RCodeRefused  RCode = 5
	RCodeYXDomain RCode = 6
	RCodeYXRRSet  RCode = 7
	RCodeNXRRSet  RCode = 8
	RCodeNotAuth  RCode = 9
	RCodeNotZone  RCode = 10
)

var rcodeNames = map[RCode]string{
	RCodeNoError:  "NOERROR",
	RCodeFormErr:  "FORMERR",
	RCodeServFail: "SERVFAIL",
	RCodeNXDomain: "NXDOMAIN",
	RCodeNotImp:   "NOTIMP",
	RCodeRefused:  "REFUSED",
	RCodeYXDomain: "YXDOMAIN",
	RCodeYXRRSet:  "YXRRSET",
	RCodeNXRRSet:  "NXRRSET",
	RCodeNotAuth:  "NOTAUTH",
	RCodeNotZone:  "NOTZONE",
}

// RCodeFromNumeric decodes a 4-bit rcode value.
func RCodeFromNumeric(n uint8) (RCode, error) {
	if _, ok := rcodeNames[RCode(n)]; !ok {
		return 0, fmt.Errorf("rcode %d: %w", n, ErrInvalidRCode)
	}
	return RCode(n), nil
}

func (r RCode) ToNumeric() uint8 { return uint8(r) }

func (r RCode) String() string {
	if name, ok := rcodeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RCODE%d", uint8(r))
}

// ClassCode is the closed symbolic set of ordinary DNS classes.
type ClassCode uint16

const (
	ClassIN   ClassCode = 1
	ClassCS   ClassCode = 2
	ClassCH   ClassCode = 3
	ClassHS   ClassCode = 4
	ClassNONE ClassCode = 254
	ClassANY  ClassCode = 255
)

var classNames = map[ClassCode]string{
	ClassIN:   "IN",
	ClassCS:   "CS",
	ClassCH:   "CH",
	ClassHS:   "HS",
	ClassNONE: "NONE",
	ClassANY:  "ANY",
}

// Class is a tagged union: either one of the closed symbolic classes, or
// (RFC 6891) the requester's EDNS UDP payload size when the owning record's
// RR type is OPT, in which case the wire class field is reinterpreted.
type Class struct {
	code        ClassCode
	ednsPayload uint16
	isEDNS      bool
}

// NewClass wraps a symbolic class code.
func NewClass(code ClassCode) Class {
	return Class{code: code}
}

// NewEDNSPayloadSizeClass wraps an OPT pseudo-RR's reinterpreted class field.
func NewEDNSPayloadSizeClass(size uint16) Class {
	return Class{ednsPayload: size, isEDNS: true}
}

// IsEDNSPayloadSize reports whether this Class is the OPT special case.
func (c Class) IsEDNSPayloadSize() bool { return c.isEDNS }

// EDNSPayloadSize returns the payload size; only meaningful if
// IsEDNSPayloadSize reports true.
func (c Class) EDNSPayloadSize() uint16 { return c.ednsPayload }

// Code returns the symbolic class; only meaningful if IsEDNSPayloadSize
// reports false.
func (c Class) Code() ClassCode { return c.code }

// ClassFromNumeric decodes an ordinary (non-OPT) class field. Unrecognized
// values are a format error.
func ClassFromNumeric(n uint16) (Class, error) {
	code := ClassCode(n)
	if _, ok := classNames[code]; !ok {
		return Class{}, fmt.Errorf("class %d: %w", n, ErrInvalidClass)
	}
	return NewClass(code), nil
}

// ToNumeric returns the wire-format representation of the class field.
func (c Class) ToNumeric() uint16 {
	if c.isEDNS {
		return c.ednsPayload
	}
	return uint16(c.code)
}

func (c Class) String() string {
	if c.isEDNS {
		return fmt.Sprintf("EDNSPAYLOAD%d", c.ednsPayload)
	}
	if name, ok := classNames[c.code]; ok {
		return name
	}
	return fmt.Sprintf("CLASS%d", uint16(c.code))
}

// RRType is the 16-bit resource-record type field. Unlike Opcode/RCode/
// Class, new RR types are assigned often enough that unknown numeric values
// are preserved verbatim rather than rejected: the type itself is always
// valid, only its rdata may end up decoded as opaque bytes (see rdata.go).
type RRType uint16

// Minimum implementation set plus the commonly-seen IANA type range, so
// debug output and error messages name types instead of showing bare
// numbers. Grounded on the full RRType enumeration kept by the original
// resolver this spec was distilled from.
const (
	RRTypeA          RRType = 1
	RRTypeNS         RRType = 2
	RRTypeMD         RRType = 3
	RRTypeMF         RRType = 4
	RRTypeCNAME      RRType = 5
	RRTypeSOA        RRType = 6
	RRTypeMB         RRType = 7
	RRTypeMG         RRType = 8
	RRTypeMR         RRType = 9
	RRTypeNULL       RRType = 10
	RRTypeWKS        RRType = 11
	RRTypePTR        RRType = 12
	RRTypeHINFO      RRType = 13
	RRTypeMINFO      RRType = 14
	RRTypeMX         RRType = 15
	RRTypeTXT        RRType = 16
	RRTypeRP         RRType = 17
	RRTypeAFSDB      RRType = 18
	RRTypeSIG        RRType = 24
	RRTypeKEY        RRType = 25
	RRTypeAAAA       RRType = 28
	RRTypeLOC        RRType = 29
	RRTypeSRV        RRType = 33
	RRTypeNAPTR      RRType = 35
	RRTypeKX         RRType = 36
	RRTypeCERT       RRType = 37
	RRTypeDNAME      RRType = 39
	RRTypeOPT        RRType = 41
	RRTypeDS         RRType = 43
	RRTypeSSHFP      RRType = 44
	RRTypeIPSECKEY   RRType = 45
	RRTypeRRSIG      RRType = 46
	RRTypeNSEC       RRType = 47
	RRTypeDNSKEY     RRType = 48
	RRTypeDHCID      RRType = 49
	RRTypeNSEC3      RRType = 50
	RRTypeNSEC3PARAM RRType = 51
	RRTypeTLSA       RRType = 52
	RRTypeSMIMEA     RRType = 53
	RRTypeCDS        RRType = 59
	RRTypeCDNSKEY    RRType = 60
	RRTypeOPENPGPKEY RRType = 61
	RRTypeCSYNC      RRType = 62
	RRTypeZONEMD     RRType = 63
	RRTypeSPF        RRType = 99
	RRTypeTKEY       RRType = 249
	RRTypeTSIG       RRType = 250
	RRTypeIXFR       RRType = 251
	RRTypeAXFR       RRType = 252
	RRTypeMAILB      RRType = 253
	RRTypeMAILA      RRType = 254
	RRTypeANY        RRType = 255
	RRTypeURI        RRType = 256
	RRTypeCAA        RRType = 257
)

var rrTypeNames = map[RRType]string{
	RRTypeA: "A", RRTypeNS: "NS", RRTypeMD: "MD", RRTypeMF: "MF",
	RRTypeCNAME: "CNAME", RRTypeSOA: "SOA", RRTypeMB: "MB", RRTypeMG: "MG",
	RRTypeMR: "MR", RRTypeNULL: "NULL", RRTypeWKS: "WKS", RRTypePTR: "PTR",
	RRTypeHINFO: "HINFO", RRTypeMINFO: "MINFO", RRTypeMX: "MX", RRTypeTXT: "TXT",
	RRTypeRP: "RP", RRTypeAFSDB: "AFSDB", RRTypeSIG: "SIG", RRTypeKEY: "KEY",
	RRTypeAAAA: "AAAA", RRTypeLOC: "LOC", RRTypeSRV: "SRV", RRTypeNAPTR: "NAPTR",
	RRTypeKX: "KX", RRTypeCERT: "CERT", RRTypeDNAME: "DNAME", RRTypeOPT: "OPT",
	RRTypeDS: "DS", RRTypeSSHFP: "SSHFP", RRTypeIPSECKEY: "IPSECKEY",
	RRTypeRRSIG: "RRSIG", RRTypeNSEC: "NSEC", RRTypeDNSKEY: "DNSKEY",
	RRTypeDHCID: "DHCID", RRTypeNSEC3: "NSEC3", RRTypeNSEC3PARAM: "NSEC3PARAM",
	RRTypeTLSA: "TLSA", RRTypeSMIMEA: "SMIMEA", RRTypeCDS: "CDS",
	RRTypeCDNSKEY: "CDNSKEY", RRTypeOPENPGPKEY: "OPENPGPKEY", RRTypeCSYNC: "CSYNC",
	RRTypeZONEMD: "ZONEMD", RRTypeSPF: "SPF", RRTypeTKEY: "TKEY",
	RRTypeTSIG: "TSIG", RRTypeIXFR: "IXFR", RRTypeAXFR: "AXFR",
	RRTypeMAILB: "MAILB", RRTypeMAILA: "MAILA", RRTypeANY: "ANY",
	RRTypeURI: "URI", RRTypeCAA: "CAA",
}

// RRTypeFromNumeric always succeeds: unknown type numbers are preserved as
// Other(n) per spec, they just have no symbolic name.
func RRTypeFromNumeric(n uint16) RRType { return RRType(n) }

func (t RRType) ToNumeric() uint16 { return uint16(t) }

func (t RRType) String() string {
	if name, ok := rrTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}
