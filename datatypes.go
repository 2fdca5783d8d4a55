// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// SNMPErrorNames maps RFC3416 error-status codes to their canonical names.
var SNMPErrorNames = map[int32]string{
	sNMP_ErrNoError:             "noError",
	sNMP_ErrTooBig:              "tooBig",
	sNMP_ErrNoSuchName:          "noSuchName",
	sNMP_ErrBadValue:            "badValue",
	sNMP_ErrReadOnly:            "readOnly",
	sNMP_ErrGenErr:              "genErr",
	sNMP_ErrNoAccess:            "noAccess",
	sNMP_ErrWrongType:           "wrongType",
	sNMP_ErrWrongLength:         "wrongLength",
	sNMP_ErrWrongEncoding:       "wrongEncoding",
	sNMP_ErrWrongValue:          "wrongValue",
	sNMP_ErrNoCreation:          "noCreation",
	sNMP_ErrInconsistentValue:   "inconsistentValue",
	sNMP_ErrResourceUnavailable: "resourceUnavailable",
	sNMP_ErrCommitFailed:        "commitFailed",
	sNMP_ErrUndoFailed:          "undoFailed",
	sNMP_ErrAuthorizationError:  "authorizationError",
	sNMP_ErrNotWritable:         "notWritable",
	sNMP_ErrInconsistentName:    "inconsistentName",
}

// Wire structures. Field order matters: these are BER SEQUENCEs and
// ASNber.Marshal/Unmarshal encode them positionally.

type SNMPv3_Packet struct {
	Version          int
	GlobalData       ASNber.RawValue
	SecuritySettings []byte //OCTET STRING wrapping the marshalled USM sequence
	PtData           ASNber.RawValue
}

type SNMPv3_GlobalData struct {
	MsgID            int32
	MsgMaxSize       int
	MsgFlag          []byte
	MsgSecurityModel int
}

type SNMPv3_SecSeq struct {
	AuthEng    []byte
	Boots      int32
	Time       int32
	User       []byte
	AuthParams []byte
	PrivParams []byte
}

type SNMPv3_ScopedPDU struct {
	ContextEngineId []byte
	ContextName     []byte
	PDUData         ASNber.RawValue
}

type SNMP_PDU_Body struct {
	RequestID      int32
	ErrorStatusRaw int32
	ErrorIndexRaw  int32
	VarBinds       []SNMP_VarBind
}

type SNMP_VarBind struct {
	RSnmpOID ASNber.ObjectIdentifier
	RSnmpVar ASNber.RawValue
}

// SNMPVar carries a decoded VarBind value: the raw BER content octets plus
// the class/tag metadata needed to interpret them. No auto-decoding.
type SNMPVar struct {
	ValueType  int
	ValueClass int
	IsCompound bool
	Value      []byte
}

type SNMP_Decoded_VarBind struct {
	RSnmpOID ASNber.ObjectIdentifier
	RSnmpVar SNMPVar
}

// SNMPv3_DecodedMessage is the fully parsed form of an incoming SNMPv3
// message after digest verification and decryption.
type SNMPv3_DecodedMessage struct {
	GlobalData       SNMPv3_GlobalData
	SecuritySettings SNMPv3_SecSeq
	ContextEngineId  []byte
	ContextName      []byte
	RequestID        int32
	ErrorStatusRaw   int32
	ErrorIndexRaw    int32
	VarBinds         []SNMP_Decoded_VarBind
	IsReport         bool
}

var SNMPvbNullValue = SNMPVar{ValueType: ASNber.NullRawValue.Tag}

// NetworkTarget describes the agent a SET is directed at.
type NetworkTarget struct {
	IPaddress      string
	Port           int
	SNMPparameters SNMPUserParameters
	DebugLevel     uint8
}

// SNMPUserParameters holds the USM credentials and exchange tuning for one
// target. Zero TimeoutMs/RetryCount select the defaults (3000 ms, 1 retry).
type SNMPUserParameters struct {
	Username     string
	AuthProtocol string
	AuthKey      string
	PrivProtocol string
	PrivKey      string
	ContextName  string
	TimeoutMs    int
	RetryCount   int
}
