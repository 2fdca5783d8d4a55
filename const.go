// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

// ASN.1/BER tag encoding constants.
// Bits 7-6: Class (Universal=00, Application=01, Context=10, Private=11)
// Bit 5: Constructed flag (0=primitive, 1=constructed/compound like SEQUENCE)
// Bits 4-0: Tag Number
//
// Example: Class=0x01 (Application), Tag=0x03 → 0x43 (APPLICATION 3 = SNMP TIMETICKS)

const (
	// SNMP Application Types (Class=1)
	SNMP_type_IPADDR    = 0
	SNMP_type_COUNTER32 = 1
	SNMP_type_GAUGE32   = 2
	SNMP_type_TIMETICKS = 3
	SNMP_type_OPAQUE    = 4
	SNMP_type_COUNTER64 = 6

	// Limits & Defaults
	SNMP_BUFFERSIZE               = 65535
	SNMP_DEFAULTPORT              = 161
	SNMP_MAXTIMEOUT_MS            = 60000
	SNMP_DEFAULTTIMEOUT_MS        = 3000
	SNMP_MAXIMUM_RETRY            = 10
	SNMP_DEFAULTRETRY             = 1
	SNMP_DEFAULTMSGSITE    uint16 = 1360
)

const (
	// SNMPv3 Message Flags (msgFlags byte)
	msgFlag_Reportable_Bit    = 2
	msgFlag_Encrypted_Bit     = 1
	msgFlag_Authenticated_Bit = 0
)

const (
	// SNMPv3 Security Models
	msgSecurityModel_USM = 3
)

const (
	// SNMPv2 PDU Types (RFC3416)
	SNMPv2_REQUEST_GET      = 0
	SNMPv2_REQUEST_RESPONSE = 2
	SNMPv2_REQUEST_SET      = 3
	SNMPv2_REPORT           = 8
)

const (
	// SNMPv3 USM Authentication Protocols
	AUTH_PROTOCOL_NONE = 0
	AUTH_PROTOCOL_MD5  = 1
	AUTH_PROTOCOL_SHA  = 2
)

const (
	// SNMPv3 USM Privacy Protocols
	PRIV_PROTOCOL_NONE   = 0
	PRIV_PROTOCOL_AES128 = 1
	PRIV_PROTOCOL_DES    = 2
	PRIV_PROTOCOL_AES192 = 3
	PRIV_PROTOCOL_AES256 = 4
	PRIV_PROTOCOL_3DES   = 5
)

const (
	// SNMPv3 Security Levels (RFC3411)
	SECLEVEL_NOAUTH_NOPRIV = 0
	SECLEVEL_AUTHNOPRIV    = 1
	SECLEVEL_AUTHPRIV      = 2
)

const (
	// Internal Parser Errors
	PARCE_ERR_WRONGMSGID = 0xf1
	PARCE_ERR_WRONGREQID = 0xf2
)

const (
	// SNMP Error Status Codes (RFC3416 §4.1.2.1)
	sNMP_ErrNoError             = 0
	sNMP_ErrTooBig              = 1
	sNMP_ErrNoSuchName          = 2
	sNMP_ErrBadValue            = 3
	sNMP_ErrReadOnly            = 4
	sNMP_ErrGenErr              = 5
	sNMP_ErrNoAccess            = 6
	sNMP_ErrWrongType           = 7
	sNMP_ErrWrongLength         = 8
	sNMP_ErrWrongEncoding       = 9
	sNMP_ErrWrongValue          = 10
	sNMP_ErrNoCreation          = 11
	sNMP_ErrInconsistentValue   = 12
	sNMP_ErrResourceUnavailable = 13
	sNMP_ErrCommitFailed        = 14
	sNMP_ErrUndoFailed          = 15
	sNMP_ErrAuthorizationError  = 16
	sNMP_ErrNotWritable         = 17
	sNMP_ErrInconsistentName    = 18
)
