// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// parseResponse decodes one incoming SNMPv3 message for the outstanding
// request identified by reqid.
//
// Order matters: envelope, global header (msgID correlation), USM security
// parameters, digest verification over the raw bytes, decryption, scoped
// PDU, then the PDU body. A msgID or requestID mismatch returns
// SNMPwrongReqID_MsgId_Errors so the receive loop can keep waiting; the
// requestID check is skipped for Report PDUs since agents echo the probe's
// ID there inconsistently.
func (s *setSession) parseResponse(udppayload []byte, reqid int32) (SNMPretPacket SNMPv3_DecodedMessage, err error) {
	var ReturnMessage SNMPv3_DecodedMessage
	var SNMPrecivedPacket SNMPv3_Packet
	var pdu1 SNMP_PDU_Body
	var umerr error

	_, umerr = ASNber.Unmarshal(udppayload, &SNMPrecivedPacket)
	if umerr != nil {
		return ReturnMessage, umerr
	}
	if SNMPrecivedPacket.Version != 3 {
		return ReturnMessage, fmt.Errorf("SNMP protocol version: %d not supported", SNMPrecivedPacket.Version)
	}

	var RecivedGlobalParameters SNMPv3_GlobalData
	var RecivedSecurity SNMPv3_SecSeq
	var RecivedScopedPDU SNMPv3_ScopedPDU

	_, umerr = ASNber.Unmarshal(SNMPrecivedPacket.GlobalData.FullBytes, &RecivedGlobalParameters)
	if umerr != nil {
		return ReturnMessage, umerr
	}
	if RecivedGlobalParameters.MsgID != atomic.LoadInt32(&s.params.MessageId) {
		return ReturnMessage, SNMPwrongReqID_MsgId_Errors{PARCE_ERR_WRONGMSGID}
	}

	_, umerr = ASNber.Unmarshal(SNMPrecivedPacket.SecuritySettings, &RecivedSecurity)
	if umerr != nil {
		return ReturnMessage, umerr
	}

	if len(RecivedGlobalParameters.MsgFlag) == 0 {
		return ReturnMessage, errors.New("empty msgFlags")
	}

	if RecivedGlobalParameters.MsgFlag[0]&(1<<msgFlag_Authenticated_Bit) != 0 {
		digver := false
		digver, umerr = verifyDigestRAW(udppayload, RecivedSecurity.AuthParams, s.params.LocalizedKeyAuth, s.params.AuthProtocol)
		if umerr != nil {
			return ReturnMessage, umerr
		}
		if !digver {
			return ReturnMessage, errors.New("authentication error")
		}
	}

	if RecivedGlobalParameters.MsgFlag[0]&(1<<msgFlag_Encrypted_Bit) != 0 {
		if s.debugLevel > 199 {
			fmt.Println("Encrypted PDU")
		}
		var DecryptedPDU []byte
		SecParamByteArray := RecivedSecurity.PrivParams
		TBoots := make([]byte, 4)
		TTime := make([]byte, 4)
		binary.BigEndian.PutUint32(TBoots, uint32(RecivedSecurity.Boots))
		binary.BigEndian.PutUint32(TTime, uint32(RecivedSecurity.Time))

		switch s.params.PrivProtocol {
		case PRIV_PROTOCOL_AES128, PRIV_PROTOCOL_AES192, PRIV_PROTOCOL_AES256:
			if len(SecParamByteArray) != 8 {
				return ReturnMessage, errors.New("privParameters length must be 8 for AES")
			}
			IV := make([]byte, 0, 16)
			IV = append(IV, TBoots...)
			IV = append(IV, TTime...)
			IV = append(IV, SecParamByteArray...)
			DecryptedPDU, umerr = decryptAESCFB(SNMPrecivedPacket.PtData.Bytes, s.params.LocalizedKeyPriv, IV)
			if umerr != nil {
				return ReturnMessage, umerr
			}
		case PRIV_PROTOCOL_DES:
			if len(SecParamByteArray) != 8 {
				return ReturnMessage, errors.New("privParameters length must be 8 for DES")
			}
			if len(s.params.LocalizedKeyPriv) < 16 {
				return ReturnMessage, errors.New("localized key for DES must be 16 or more bytes")
			}
			IV := make([]byte, 8)
			for i := 0; i < 8; i++ {
				IV[i] = s.params.LocalizedKeyPriv[8+i] ^ SecParamByteArray[i]
			}
			DecryptedPDU, umerr = decryptDES(SNMPrecivedPacket.PtData.Bytes, s.params.LocalizedKeyPriv[:8], IV)
			if umerr != nil {
				return ReturnMessage, umerr
			}
		case PRIV_PROTOCOL_3DES:
			if len(SecParamByteArray) != 8 {
				return ReturnMessage, errors.New("privParameters length must be 8 for 3DES")
			}
			if len(s.params.LocalizedKeyPriv) < 32 {
				return ReturnMessage, errors.New("localized key for 3DES must be 32 or more bytes")
			}
			IV := make([]byte, 8)
			for i := 0; i < 8; i++ {
				IV[i] = s.params.LocalizedKeyPriv[24+i] ^ SecParamByteArray[i]
			}
			DecryptedPDU, umerr = decrypt3DES(SNMPrecivedPacket.PtData.Bytes, s.params.LocalizedKeyPriv[:24], IV)
			if umerr != nil {
				return ReturnMessage, umerr
			}
		default:
			return ReturnMessage, errors.New("encrypted response but no priv protocol configured")
		}

		_, umerr = ASNber.Unmarshal(DecryptedPDU, &RecivedScopedPDU)
	} else {
		_, umerr = ASNber.Unmarshal(SNMPrecivedPacket.PtData.FullBytes, &RecivedScopedPDU)
	}
	if umerr != nil {
		return ReturnMessage, umerr
	}

	if RecivedScopedPDU.PDUData.Class == ASNber.ClassContextSpecific && RecivedScopedPDU.PDUData.Tag == SNMPv2_REPORT {
		if s.debugLevel > 199 {
			fmt.Println("Received Report MSG!")
		}
		ReturnMessage.IsReport = true
	}

	if len(RecivedScopedPDU.PDUData.FullBytes) == 0 {
		return ReturnMessage, errors.New("received PDU not found")
	}

	// The PDU arrives with a context-specific tag that Unmarshal does not
	// follow. Its content is an ordinary SEQUENCE, so the tag byte is
	// rewritten to 0x30 before decoding the body.
	RecivedScopedPDU.PDUData.FullBytes[0] = 0x30
	_, umerr = ASNber.Unmarshal(RecivedScopedPDU.PDUData.FullBytes, &pdu1)
	if umerr != nil {
		return ReturnMessage, umerr
	}

	if pdu1.RequestID != reqid && !ReturnMessage.IsReport {
		return ReturnMessage, SNMPwrongReqID_MsgId_Errors{PARCE_ERR_WRONGREQID}
	}

	for _, oidv := range pdu1.VarBinds {
		ReturnMessage.VarBinds = append(ReturnMessage.VarBinds, SNMP_Decoded_VarBind{oidv.RSnmpOID, SNMPVar{oidv.RSnmpVar.Tag, oidv.RSnmpVar.Class, oidv.RSnmpVar.IsCompound, oidv.RSnmpVar.Bytes}})
	}

	ReturnMessage.GlobalData = RecivedGlobalParameters
	ReturnMessage.SecuritySettings = RecivedSecurity
	ReturnMessage.ContextEngineId = RecivedScopedPDU.ContextEngineId
	ReturnMessage.ContextName = RecivedScopedPDU.ContextName
	ReturnMessage.RequestID = pdu1.RequestID
	ReturnMessage.ErrorStatusRaw = pdu1.ErrorStatusRaw
	ReturnMessage.ErrorIndexRaw = pdu1.ErrorIndexRaw
	return ReturnMessage, nil
}
