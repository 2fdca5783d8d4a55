// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// ParseOID converts a dotted OID string to its arc slice.
//
// Leading/trailing dots are tolerated ("1.3.6.1." → [1,3,6,1]). Every arc
// must be a non-negative decimal and at least two arcs are required, the
// minimum a BER object identifier can encode.
func ParseOID(OIDStr string) (OIDIntArray []int, err error) {
	OIDStr = strings.Trim(strings.TrimSpace(OIDStr), ".")
	if len(OIDStr) == 0 {
		return nil, errors.New("empty OID")
	}
	OIDStringArray := strings.Split(OIDStr, ".")
	if len(OIDStringArray) < 2 {
		return nil, fmt.Errorf("OID needs at least two arcs: %s", OIDStr)
	}
	RetArray := make([]int, 0, len(OIDStringArray))
	for _, OidStringVal := range OIDStringArray {
		OidIntVal, convErr := strconv.Atoi(OidStringVal)
		if convErr != nil || OidIntVal < 0 {
			return nil, fmt.Errorf("invalid OID arc: %q", OidStringVal)
		}
		RetArray = append(RetArray, OidIntVal)
	}
	return RetArray, nil
}

// FormatOID renders an arc slice as a dotted string.
func FormatOID(OIDIntArray []int) (OIDStr string) {
	RetStr := ""
	for varind, val := range OIDIntArray {
		RetStr += strconv.Itoa(val)
		if varind < len(OIDIntArray)-1 {
			RetStr += "."
		}
	}
	return RetStr
}

// Convert_bytearray_to_intarray casts []byte to []int without BER decoding.
func Convert_bytearray_to_intarray(bytearray []byte) (intarray []int) {
	retvar := make([]int, 0, len(bytearray))
	for _, val := range bytearray {
		retvar = append(retvar, int(val))
	}
	return retvar
}

// decodeOIDContentOctets decodes raw BER object identifier content octets,
// including multi-byte subidentifiers and the packed leading arc pair. The
// first subidentifier encodes 40*X+Y with X capped at 2, so values of 80 and
// above belong to the 2.* tree even when they span several octets.
func decodeOIDContentOctets(bytearray []byte) (intarray []int) {
	retvar := make([]int, 0, len(bytearray)+1)
	multibyteVal := 0
	largevalue := false
	firstsub := true
	for _, val := range bytearray {
		if val >= 0x80 {
			multibyteVal = multibyteVal*128 + (int(val)-0x80)*128
			largevalue = true
			continue
		}
		subid := int(val)
		if largevalue {
			subid = multibyteVal + int(val)
			largevalue = false
		}
		multibyteVal = 0
		if firstsub {
			firstsub = false
			switch {
			case subid < 40:
				retvar = append(retvar, 0, subid)
			case subid < 80:
				retvar = append(retvar, 1, subid-40)
			default:
				retvar = append(retvar, 2, subid-80)
			}
			continue
		}
		retvar = append(retvar, subid)
	}
	return retvar
}

// Convert_snmpint_to_int32 converts raw INTEGER content octets (1-4 bytes,
// TLV already stripped) to int32 with sign extension.
func Convert_snmpint_to_int32(bytearray []byte) (intdata int32) {
	bytearray32 := []byte{0, 0, 0, 0}
	switch len(bytearray) {
	case 1:
		return int32(int8(bytearray[0]))
	case 2:
		return int32(int16(binary.BigEndian.Uint16(bytearray)))
	case 3:
		copy(bytearray32[1:], bytearray)
		return int32(binary.BigEndian.Uint32(bytearray32))
	case 4:
		return int32(binary.BigEndian.Uint32(bytearray))
	default:
		return 0
	}
}

// Convert_bytearray_to_uint converts raw unsigned INTEGER content octets
// (1-8 bytes, TLV already stripped) to uint64. Counter64 values and
// Gauge32/TimeTicks with a protective leading zero both land here.
func Convert_bytearray_to_uint(bytearray []byte) (intdata uint64) {
	bytearray64 := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if len(bytearray) == 0 || len(bytearray) > 8 {
		return 0
	}
	copy(bytearray64[8-len(bytearray):], bytearray)
	return binary.BigEndian.Uint64(bytearray64)
}

func isAscii(datab []byte) (AsciiString bool, LastAsciSymbolIndex int) {
	FirstZeroPos := -1
	LastAscipos := 0
	hasPrintable := false
	for i := 0; i < len(datab); i++ {
		if datab[i] < 0x20 || datab[i] > 0x7e {
			if datab[i] == 0x09 || datab[i] == 0x0a || datab[i] == 0x0d {
				continue
			}
			if datab[i] == 0x00 {
				if FirstZeroPos == -1 {
					FirstZeroPos = i
				}
				continue
			}
			return false, LastAscipos
		} else {
			LastAscipos = i
			hasPrintable = true
		}
	}
	if FirstZeroPos > -1 && FirstZeroPos < LastAscipos {
		return false, LastAscipos
	}
	return hasPrintable, LastAscipos
}

// Convert_ClassTag_to_String maps a decoded variable to its canonical SNMP
// type name, the form binding records carry.
func Convert_ClassTag_to_String(Var SNMPVar) string {
	StringType := "Unknown"
	switch Var.ValueClass {
	case ASNber.ClassUniversal:
		switch Var.ValueType {
		case ASNber.TagInteger:
			StringType = "Integer"
		case ASNber.TagOctetString:
			StringType = "OctetString"
		case ASNber.TagNull:
			StringType = "Null"
		case ASNber.TagOID:
			StringType = "ObjectIdentifier"
		default:
			StringType = "Unknown Universal"
		}
	case ASNber.ClassApplication:
		switch Var.ValueType {
		case SNMP_type_IPADDR:
			StringType = "IpAddress"
		case SNMP_type_COUNTER32:
			StringType = "Counter32"
		case SNMP_type_GAUGE32:
			StringType = "Gauge32"
		case SNMP_type_TIMETICKS:
			StringType = "TimeTicks"
		case SNMP_type_COUNTER64:
			StringType = "Counter64"
		case SNMP_type_OPAQUE:
			StringType = "Opaque"
		default:
			StringType = "Unknown Application"
		}
	}
	return StringType
}

// Convert_Variable_To_String formats a decoded variable for display.
//
// Integers print as decimal, octet strings as ASCII when printable and hex
// otherwise, OIDs in dotted notation. TimeTicks print as the raw tick count
// (centiseconds) so a value written with the TimeTicks tag reads back as
// the same number.
func Convert_Variable_To_String(Var SNMPVar) string {
	if Var.IsCompound {
		return hex.EncodeToString(Var.Value)
	}
	switch Var.ValueClass {
	case ASNber.ClassUniversal:
		switch Var.ValueType {
		case ASNber.TagInteger:
			return fmt.Sprintf("%d", Convert_snmpint_to_int32(Var.Value))
		case ASNber.TagOctetString:
			return formatOctetString(Var.Value)
		case ASNber.TagNull:
			return ""
		case ASNber.TagOID:
			return FormatOID(decodeOIDContentOctets(Var.Value))
		default:
			return string(Var.Value)
		}
	case ASNber.ClassApplication:
		switch Var.ValueType {
		case SNMP_type_IPADDR:
			return formatIPAddress(Var.Value)
		case SNMP_type_TIMETICKS, SNMP_type_COUNTER32, SNMP_type_GAUGE32, SNMP_type_COUNTER64:
			return fmt.Sprintf("%d", Convert_bytearray_to_uint(Var.Value))
		case SNMP_type_OPAQUE:
			return hex.EncodeToString(Var.Value)
		}
	}
	return ""
}

func formatIPAddress(data []byte) string {
	if len(data) != 4 {
		return fmt.Sprintf("Invalid IP (len=%d): %s", len(data), hex.EncodeToString(data))
	}
	return net.IP(data).String()
}

func formatOctetString(data []byte) string {
	if isAsciiFl, lastIndex := isAscii(data); isAsciiFl {
		if lastIndex < len(data)-1 {
			return string(data[:lastIndex+1])
		}
		return string(data)
	}
	return hex.EncodeToString(data)
}
