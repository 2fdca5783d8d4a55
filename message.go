// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"encoding/binary"
	"errors"
	"sync/atomic"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// makeMessage constructs a raw SNMPv3 message for transmission.
//
// Builds the global header and USM security sequence (with a zero-filled
// AuthParams placeholder), wraps the PDU body in a context-class RawValue
// inside the scoped PDU, encrypts the scoped PDU when the privacy flag is
// set, and finally splices in the HMAC digest by re-marshalling.
//
// Privacy IVs:
//   - AES (CFB128): boots(4) | time(4) | counter64(8)
//   - DES/3DES (CBC): preIV XOR salt, salt = boots(4) | counter32(4)
func (s *setSession) makeMessage(oidValue []SNMP_VarBind, ReqType int, RequestID int32) (msg []byte, err error) {
	var SNMP_Packet SNMPv3_Packet
	var SNMP_GlobalData SNMPv3_GlobalData
	var SNMP_SecuritySequence SNMPv3_SecSeq
	var ScopedPDU SNMPv3_ScopedPDU
	var currentPrivParam uint64
	var currentPrivParamDes uint32

	SNMP_Packet.Version = 3
	TBoots := make([]byte, 4)
	TTime := make([]byte, 4)

	boots := atomic.LoadInt32(&s.params.RBoots)
	timeVal := atomic.LoadInt32(&s.params.RTime)
	binary.BigEndian.PutUint32(TBoots, uint32(boots))
	binary.BigEndian.PutUint32(TTime, uint32(timeVal))

	SNMP_GlobalData.MsgFlag = make([]byte, 1)
	SNMP_GlobalData.MsgFlag[0] = byte(atomic.LoadUint32(&s.params.DataFlag))
	SNMP_GlobalData.MsgSecurityModel = msgSecurityModel_USM
	SNMP_GlobalData.MsgID = atomic.LoadInt32(&s.params.MessageId)
	SNMP_GlobalData.MsgMaxSize = int(SNMP_DEFAULTMSGSITE)
	GlobalData, GlobalDataError := ASNber.Marshal(SNMP_GlobalData)
	if GlobalDataError != nil {
		return nil, GlobalDataError
	}
	SNMP_Packet.GlobalData.FullBytes = GlobalData

	SNMP_SecuritySequence.Time = timeVal
	SNMP_SecuritySequence.Boots = boots
	SNMP_SecuritySequence.AuthEng = s.params.EngineID
	if atomic.LoadUint32(&s.params.DataFlag)&(1<<msgFlag_Authenticated_Bit) != 0 {
		// MD5 and SHA1 digests both truncate to 12 bytes
		SNMP_SecuritySequence.AuthParams = make([]byte, 12)
	}
	if atomic.LoadUint32(&s.params.DataFlag)&(1<<msgFlag_Encrypted_Bit) != 0 {
		switch s.params.PrivProtocol {
		case PRIV_PROTOCOL_AES128, PRIV_PROTOCOL_AES192, PRIV_PROTOCOL_AES256:
			currentPrivParam = atomic.AddUint64(&s.params.PrivParameter, 1)
			SecParamByteArray := make([]byte, 8)
			binary.BigEndian.PutUint64(SecParamByteArray, currentPrivParam)
			SNMP_SecuritySequence.PrivParams = SecParamByteArray
		case PRIV_PROTOCOL_DES, PRIV_PROTOCOL_3DES:
			currentPrivParamDes = atomic.AddUint32(&s.params.PrivParameterDes, 1)
			SecParamByteArray := make([]byte, 4)
			binary.BigEndian.PutUint32(SecParamByteArray, currentPrivParamDes)
			Salt := make([]byte, 0, 8)
			Salt = append(Salt, TBoots...)
			Salt = append(Salt, SecParamByteArray...)
			SNMP_SecuritySequence.PrivParams = Salt
		}
	}

	SNMP_SecuritySequence.User = []byte(s.params.Username)
	SecuritylData, SecuritylDataError := ASNber.Marshal(SNMP_SecuritySequence)
	if SecuritylDataError != nil {
		return nil, SecuritylDataError
	}
	SNMP_Packet.SecuritySettings = SecuritylData

	var PDUBody SNMP_PDU_Body
	PDUBody.VarBinds = oidValue
	PDUBody.RequestID = RequestID
	PDUBody.ErrorStatusRaw = 0
	PDUBody.ErrorIndexRaw = 0
	PDUBodyEncoded, PDUBodyEncodeErr := ASNber.Marshal(PDUBody)
	if PDUBodyEncodeErr != nil {
		return nil, PDUBodyEncodeErr
	}

	// The PDU rides inside the scoped PDU as a context-class constructed
	// value whose tag is the PDU type, so the marshalled SEQUENCE loses its
	// own tag and length here.
	var pmval ASNber.RawValue
	pmval.Class = ASNber.ClassContextSpecific
	pmval.IsCompound = true
	pmval.Tag = ReqType
	PureData, ExErr := ASNber.ExtractDataWOTagAndLen(PDUBodyEncoded)
	if ExErr != nil {
		return nil, ExErr
	}
	pmval.Bytes = PureData

	ScopedPDU.PDUData = pmval
	ScopedPDU.ContextName = []byte(s.params.ContextName)
	ScopedPDU.ContextEngineId = s.params.ContextEngineId
	ScopedPDUMarshal, ScopedPDUMarshalErr := ASNber.Marshal(ScopedPDU)
	if ScopedPDUMarshalErr != nil {
		return nil, ScopedPDUMarshalErr
	}

	if atomic.LoadUint32(&s.params.DataFlag)&(1<<msgFlag_Encrypted_Bit) != 0 {
		var EncryptedPdu []byte
		var Encerr error
		switch s.params.PrivProtocol {
		case PRIV_PROTOCOL_AES128, PRIV_PROTOCOL_AES192, PRIV_PROTOCOL_AES256:
			SecParamByteArray := make([]byte, 8)
			binary.BigEndian.PutUint64(SecParamByteArray, currentPrivParam)
			IV := make([]byte, 0, 16)
			IV = append(IV, TBoots...)
			IV = append(IV, TTime...)
			IV = append(IV, SecParamByteArray...)

			EncryptedPdu, Encerr = encryptAESCFB(ScopedPDUMarshal, s.params.LocalizedKeyPriv, IV)
			if Encerr != nil {
				return nil, errors.New("encryption error")
			}
		case PRIV_PROTOCOL_DES:
			if len(s.params.LocalizedKeyPriv) < 16 {
				return nil, errors.New("DES needs a localized key of at least 16 bytes")
			}
			IV := desStyleIV(s.params.LocalizedKeyPriv[8:16], TBoots, currentPrivParamDes)
			EncryptedPdu, Encerr = encryptDES(ScopedPDUMarshal, s.params.LocalizedKeyPriv[:8], IV)
			if Encerr != nil {
				return nil, errors.New("encryption error")
			}
		case PRIV_PROTOCOL_3DES:
			if len(s.params.LocalizedKeyPriv) < 32 {
				return nil, errors.New("3DES needs a localized key of at least 32 bytes")
			}
			IV := desStyleIV(s.params.LocalizedKeyPriv[24:32], TBoots, currentPrivParamDes)
			EncryptedPdu, Encerr = encrypt3DES(ScopedPDUMarshal, s.params.LocalizedKeyPriv[:24], IV)
			if Encerr != nil {
				return nil, errors.New("encryption error")
			}
		case PRIV_PROTOCOL_NONE:
			return nil, errors.New("encrypted flag set but priv protocol is NONE")
		default:
			return nil, errors.New("encrypted flag set but priv protocol is unknown")
		}

		SNMP_Packet.PtData.Bytes = EncryptedPdu
		SNMP_Packet.PtData.Tag = ASNber.TagOctetString
	} else {
		SNMP_Packet.PtData.FullBytes = ScopedPDUMarshal
	}

	SNMPv3Packet, SNMPv3PacketError := ASNber.Marshal(SNMP_Packet)
	if SNMPv3PacketError != nil {
		return nil, SNMPv3PacketError
	}

	if atomic.LoadUint32(&s.params.DataFlag)&(1<<msgFlag_Authenticated_Bit) != 0 {
		Digest := makeDigest(SNMPv3Packet, s.params.LocalizedKeyAuth, s.params.AuthProtocol)
		SNMP_SecuritySequence.AuthParams = Digest

		SecuritylDataAfterDigist, SecuritylDataAfterDigistError := ASNber.Marshal(SNMP_SecuritySequence)
		if SecuritylDataAfterDigistError != nil {
			return nil, SecuritylDataAfterDigistError
		}
		SNMP_Packet.SecuritySettings = SecuritylDataAfterDigist
		SNMPv3Packet, SNMPv3PacketError = ASNber.Marshal(SNMP_Packet)
		if SNMPv3PacketError != nil {
			return nil, SNMPv3PacketError
		}
	}
	return SNMPv3Packet, nil
}

// desStyleIV derives the DES family IV: preIV XOR (boots | counter32).
func desStyleIV(preIV []byte, TBoots []byte, counter uint32) []byte {
	SecParamByteArray := make([]byte, 4)
	binary.BigEndian.PutUint32(SecParamByteArray, counter)
	Salt := make([]byte, 0, 8)
	Salt = append(Salt, TBoots...)
	Salt = append(Salt, SecParamByteArray...)
	IV := make([]byte, 8)
	for i := 0; i < 8; i++ {
		IV[i] = preIV[i] ^ Salt[i]
	}
	return IV
}
