// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"net"
	"strconv"
	"strings"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// ValueKind identifies one of the value types accepted for SET operations.
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindUnsigned
	KindString
	KindHexString
	KindDecimalString
	KindNullObject
	KindObjectIdentifier
	KindTimeTicks
	KindIPAddress
)

// TypedValue is a value ready for the packet builder: raw BER content octets
// plus the class/tag under which they are emitted.
type TypedValue struct {
	Kind       ValueKind
	ValueType  int
	ValueClass int
	Value      []byte
}

// valueKindNames accepts both the long tag names and the net-snmp
// single-letter aliases, case-insensitively.
var valueKindNames = map[string]ValueKind{
	"integer":          KindInteger,
	"i":                KindInteger,
	"unsigned":         KindUnsigned,
	"u":                KindUnsigned,
	"string":           KindString,
	"s":                KindString,
	"hexstring":        KindHexString,
	"x":                KindHexString,
	"decimalstring":    KindDecimalString,
	"d":                KindDecimalString,
	"nullobject":       KindNullObject,
	"n":                KindNullObject,
	"objectidentifier": KindObjectIdentifier,
	"o":                KindObjectIdentifier,
	"timeticks":        KindTimeTicks,
	"t":                KindTimeTicks,
	"ipaddress":        KindIPAddress,
	"a":                KindIPAddress,
}

// ParseValueKind resolves a type tag string. Unknown tags are a fatal
// EncodingError: a typo must not silently turn a SET into something else.
func ParseValueKind(typeTag string) (ValueKind, error) {
	kind, ok := valueKindNames[strings.ToLower(strings.TrimSpace(typeTag))]
	if !ok {
		return 0, EncodingError{TypeTag: typeTag, Reason: "unknown type tag"}
	}
	return kind, nil
}

// EncodeValue converts the textual value into its wire form under the given
// type tag. All validation failures are EncodingError.
func EncodeValue(typeTag string, rawValue string) (TypedValue, error) {
	kind, err := ParseValueKind(typeTag)
	if err != nil {
		return TypedValue{}, err
	}

	switch kind {
	case KindInteger:
		ival, cerr := strconv.ParseInt(strings.TrimSpace(rawValue), 10, 32)
		if cerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: "not a 32 bit signed integer: " + rawValue}
		}
		Bval := make([]byte, 4)
		binary.BigEndian.PutUint32(Bval, uint32(int32(ival)))
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassUniversal, ValueType: ASNber.TagInteger, Value: Bval}, nil

	case KindUnsigned:
		uval, cerr := strconv.ParseUint(strings.TrimSpace(rawValue), 10, 32)
		if cerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: "not a 32 bit unsigned integer: " + rawValue}
		}
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassApplication, ValueType: SNMP_type_GAUGE32, Value: encodeUnsigned32(uint32(uval))}, nil

	case KindString:
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassUniversal, ValueType: ASNber.TagOctetString, Value: []byte(rawValue)}, nil

	case KindHexString:
		data, cerr := parseHexString(rawValue)
		if cerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: cerr.Error()}
		}
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassUniversal, ValueType: ASNber.TagOctetString, Value: data}, nil

	case KindDecimalString:
		data, cerr := parseDecimalString(rawValue)
		if cerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: cerr.Error()}
		}
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassUniversal, ValueType: ASNber.TagOctetString, Value: data}, nil

	case KindNullObject:
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassUniversal, ValueType: ASNber.TagNull}, nil

	case KindObjectIdentifier:
		OidInt, cerr := ParseOID(rawValue)
		if cerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: cerr.Error()}
		}
		OidMarshalled, merr := ASNber.Marshal(ASNber.ObjectIdentifier(OidInt))
		if merr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: merr.Error()}
		}
		PureData, eerr := ASNber.ExtractDataWOTagAndLen(OidMarshalled)
		if eerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: eerr.Error()}
		}
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassUniversal, ValueType: ASNber.TagOID, Value: PureData}, nil

	case KindTimeTicks:
		uval, cerr := strconv.ParseUint(strings.TrimSpace(rawValue), 10, 32)
		if cerr != nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: "not a 32 bit unsigned tick count: " + rawValue}
		}
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassApplication, ValueType: SNMP_type_TIMETICKS, Value: encodeUnsigned32(uint32(uval))}, nil

	case KindIPAddress:
		ip := net.ParseIP(strings.TrimSpace(rawValue))
		if ip == nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: "not an IP address: " + rawValue}
		}
		Bval := ip.To4()
		if Bval == nil {
			return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: "not an IPv4 address: " + rawValue}
		}
		return TypedValue{Kind: kind, ValueClass: ASNber.ClassApplication, ValueType: SNMP_type_IPADDR, Value: Bval}, nil
	}

	return TypedValue{}, EncodingError{TypeTag: typeTag, Reason: "unknown type tag"}
}

// encodeUnsigned32 produces minimal-length unsigned content octets with a
// leading zero byte when the high bit of the first octet is set, so the
// value is not read back as negative.
func encodeUnsigned32(uval uint32) []byte {
	Bval := make([]byte, 4)
	binary.BigEndian.PutUint32(Bval, uval)
	firstNonZero := 0
	for firstNonZero < 3 && Bval[firstNonZero] == 0 {
		firstNonZero++
	}
	Bval = Bval[firstNonZero:]
	if Bval[0]&0x80 != 0 {
		Bval = append([]byte{0x00}, Bval...)
	}
	return Bval
}

// parseHexString accepts "DEAD", "0xDEAD" and byte groups separated by
// spaces or colons ("0xDE AD", "de:ad"). Odd digit counts are rejected.
func parseHexString(rawValue string) ([]byte, error) {
	cleaned := strings.TrimSpace(rawValue)
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "0x"), "0X")
	cleaned = strings.ReplaceAll(cleaned, ":", "")
	cleaned = strings.Join(strings.Fields(cleaned), "")
	if len(cleaned) == 0 {
		return nil, errors.New("empty hex string")
	}
	data, derr := hex.DecodeString(cleaned)
	if derr != nil {
		return nil, errors.New("invalid hex string: " + rawValue)
	}
	return data, nil
}

// parseDecimalString converts whitespace separated byte values ("0 255 16")
// into the octets they name. Values outside 0..255 are rejected.
func parseDecimalString(rawValue string) ([]byte, error) {
	fields := strings.Fields(rawValue)
	if len(fields) == 0 {
		return nil, errors.New("empty decimal string")
	}
	data := make([]byte, 0, len(fields))
	for _, field := range fields {
		bval, cerr := strconv.ParseUint(field, 10, 16)
		if cerr != nil || bval > 255 {
			return nil, errors.New("byte value out of range: " + field)
		}
		data = append(data, byte(bval))
	}
	return data, nil
}

// Convert_setvar_toasn1raw converts a TypedValue to an ASN.1 RawValue ready
// for SET packet marshaling.
func Convert_setvar_toasn1raw(invar TypedValue) ASNber.RawValue {
	Retvar := ASNber.NullRawValue
	Retvar.Tag = invar.ValueType
	Retvar.Class = invar.ValueClass
	Retvar.Bytes = invar.Value
	return Retvar
}
