// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync/atomic"
	"time"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// setSession carries the state of one SET invocation: the UDP socket, the
// USM parameters and the discovered engine data. It lives for exactly one
// call to SNMPv3_Set and is not shared between goroutines.
type setSession struct {
	ipaddress  string
	port       int
	debugLevel uint8
	conn       net.Conn
	params     sessionParams
}

type sessionParams struct {
	PrivParameter    uint64
	PrivParameterDes uint32
	MessageId        int32
	RequestId        int32
	RBoots           int32
	RTime            int32
	DataFlag         uint32

	Username      string
	AuthKey       string
	AuthProtocol  int
	PrivKey       string
	PrivProtocol  int
	SecurityLevel int

	LocalizedKeyAuth []byte
	LocalizedKeyPriv []byte

	// Authoritative Engine ID (RFC 3414), learned through discovery.
	EngineID []byte
	// Context Engine ID (RFC 3412) for the scoped PDU. Matches EngineID
	// except behind a proxy.
	ContextEngineId []byte
	ContextName     string

	TimeoutMs  int
	RetryCount int
}

var (
	oidSysDescrInstance = []int{1, 3, 6, 1, 2, 1, 1, 1, 0}
	oidUnknownEngineID  = ASNber.ObjectIdentifier([]int{1, 3, 6, 1, 6, 3, 15, 1, 1, 4, 0})
)

// SNMPv3_Set writes one value to one OID on the target agent.
//
// Configuration and value-encoding problems are returned as an error
// (ConfigError or EncodingError) before any packet leaves the host. Every
// network-visible outcome, including timeouts, lands in the SetResult:
//
//	Bindings         - the agent committed the SET
//	ReportError      - the agent rejected the message at the USM layer
//	ApplicationError - the agent refused the operation (errorStatus != 0)
//	TransportFailure - retries exhausted or the exchange broke down
//
// One UDP socket is opened per call and released on every exit path.
func SNMPv3_Set(Target NetworkTarget, OidStr string, TypeTag string, RawValue string) (result SetResult, err error) {
	seclevel, aproto, pproto, cerr := ClassifySecurityLevel(
		Target.SNMPparameters.Username,
		Target.SNMPparameters.AuthProtocol, Target.SNMPparameters.AuthKey,
		Target.SNMPparameters.PrivProtocol, Target.SNMPparameters.PrivKey)
	if cerr != nil {
		return SetResult{}, cerr
	}

	if net.ParseIP(Target.IPaddress) == nil {
		return SetResult{}, ConfigError{Reason: fmt.Sprintf("not an IP address: %q", Target.IPaddress)}
	}

	Oid, oerr := ParseOID(OidStr)
	if oerr != nil {
		return SetResult{}, EncodingError{Reason: oerr.Error()}
	}

	SetValue, verr := EncodeValue(TypeTag, RawValue)
	if verr != nil {
		return SetResult{}, verr
	}

	Session := &setSession{}
	Session.debugLevel = Target.DebugLevel
	Session.ipaddress = Target.IPaddress
	Session.port = Target.Port
	if Session.port <= 0 {
		Session.port = SNMP_DEFAULTPORT
	}
	if Session.port > 65535 {
		return SetResult{}, ConfigError{Reason: fmt.Sprintf("port out of range: %d", Session.port)}
	}

	Session.params.Username = Target.SNMPparameters.Username
	Session.params.AuthKey = Target.SNMPparameters.AuthKey
	Session.params.PrivKey = Target.SNMPparameters.PrivKey
	Session.params.ContextName = Target.SNMPparameters.ContextName
	Session.params.SecurityLevel = seclevel
	Session.params.AuthProtocol = aproto
	Session.params.PrivProtocol = pproto

	Session.params.TimeoutMs = Target.SNMPparameters.TimeoutMs
	if Session.params.TimeoutMs <= 0 || Session.params.TimeoutMs > SNMP_MAXTIMEOUT_MS {
		Session.params.TimeoutMs = SNMP_DEFAULTTIMEOUT_MS
	}
	Session.params.RetryCount = Target.SNMPparameters.RetryCount
	if Session.params.RetryCount < 0 || Session.params.RetryCount > SNMP_MAXIMUM_RETRY {
		Session.params.RetryCount = SNMP_DEFAULTRETRY
	}

	Session.params.MessageId = rand.Int31()
	Session.params.RequestId = rand.Int31()
	atomic.OrUint32(&Session.params.DataFlag, 1<<msgFlag_Reportable_Bit)

	tmms := time.Duration(10) * time.Second
	Ds := net.Dialer{Timeout: tmms}
	DialAddress := net.JoinHostPort(Session.ipaddress, fmt.Sprintf("%d", Session.port))
	conn, dialerr := Ds.Dial("udp", DialAddress)
	if dialerr != nil {
		return transportFailure("dial failed: %v", dialerr), nil
	}
	Session.conn = conn
	defer func() {
		// The exchange outcome stands regardless of how the socket release
		// goes: once the agent has answered, a close error is not a
		// transport failure.
		cerrc := conn.Close()
		Session.conn = nil
		if cerrc != nil && Session.debugLevel > 199 {
			fmt.Println("Close error:", cerrc)
		}
	}()

	if discResult, ok := Session.discoverEngine(); !ok {
		return discResult, nil
	}

	atomic.AddInt32(&Session.params.MessageId, 1)
	atomic.AddInt32(&Session.params.RequestId, 1)

	SetVarBinds := []SNMP_VarBind{{Oid, Convert_setvar_toasn1raw(SetValue)}}
	rts, exerr := Session.exchange(SetVarBinds, SNMPv2_REQUEST_SET)
	if exerr != nil {
		return transportFailure("%v", exerr), nil
	}

	return classifyExchange(Session.ipaddress, rts), nil
}

// discoverEngine runs the RFC 3414 engine discovery handshake: a
// reportable, unauthenticated probe under an empty username, answered by a
// Report carrying usmStatsUnknownEngineIDs plus the agent's engine ID,
// boots and time. On success the session keys are localized and the auth
// and privacy flag bits are raised for the upcoming SET.
//
// Returns ok=false with the SetResult to hand back when discovery did not
// produce a usable engine.
func (s *setSession) discoverEngine() (failure SetResult, ok bool) {
	realUser := s.params.Username
	s.params.Username = ""
	ProbeVarBinds := []SNMP_VarBind{{oidSysDescrInstance, ASNber.NullRawValue}}
	rts, exerr := s.exchange(ProbeVarBinds, SNMPv2_REQUEST_GET)
	s.params.Username = realUser
	if exerr != nil {
		return transportFailure("discovery failed: %v", exerr), false
	}

	if !rts.IsReport || len(rts.VarBinds) == 0 || !rts.VarBinds[0].RSnmpOID.Equal(oidUnknownEngineID) {
		// An agent that answers the probe with anything but the unknown
		// engine ID report is rejecting the exchange outright.
		probeResult := classifyExchange(s.ipaddress, rts)
		if probeResult.Outcome == OutcomeBindings {
			// no SET has happened yet, a plain response here must not
			// read as success
			probeResult = transportFailure("discovery failed: unexpected response to probe")
		}
		return probeResult, false
	}
	if len(rts.SecuritySettings.AuthEng) == 0 {
		return transportFailure("discovery failed: empty engine ID in report"), false
	}

	if s.debugLevel > 199 {
		fmt.Println("Discovered Engine ID:", hex.EncodeToString(rts.SecuritySettings.AuthEng),
			"Discovered boots:", rts.SecuritySettings.Boots, "Discovered times:", rts.SecuritySettings.Time)
	}

	s.params.EngineID = rts.SecuritySettings.AuthEng
	s.params.ContextEngineId = rts.SecuritySettings.AuthEng
	atomic.StoreInt32(&s.params.RBoots, rts.SecuritySettings.Boots)
	atomic.StoreInt32(&s.params.RTime, rts.SecuritySettings.Time)

	if s.params.SecurityLevel > SECLEVEL_NOAUTH_NOPRIV {
		Lkey := makeLocalizedKey(s.params.AuthKey, s.params.EngineID, s.params.AuthProtocol)
		s.params.LocalizedKeyAuth = Lkey
		atomic.OrUint32(&s.params.DataFlag, 1<<msgFlag_Authenticated_Bit)
	}
	if s.params.SecurityLevel == SECLEVEL_AUTHPRIV {
		Lkey := makeLocalizedKey(s.params.PrivKey, s.params.EngineID, s.params.AuthProtocol)
		Lkey = expandPrivKey(Lkey, s.params.PrivProtocol, s.params.AuthProtocol, s.params.EngineID)
		s.params.LocalizedKeyPriv = Lkey
		s.params.PrivParameter = rand.Uint64()
		s.params.PrivParameterDes = rand.Uint32()
		atomic.OrUint32(&s.params.DataFlag, 1<<msgFlag_Encrypted_Bit)
	}

	return SetResult{}, true
}

// exchange performs one request/response round with a fixed per-attempt
// timeout. The request is sent once, then resent only after a read timeout,
// up to RetryCount extra attempts (RetryCount=2 means three sends against a
// silent agent). Responses with a mismatched msgID or requestID are dropped
// and the read is re-armed under the same attempt's deadline, so a burst of
// stale datagrams cannot eat into the attempt budget.
func (s *setSession) exchange(oidValue []SNMP_VarBind, ReqType int) (SNMPretPacket SNMPv3_DecodedMessage, err error) {
	var ReturnMessage SNMPv3_DecodedMessage
	var recerr SNMPwrongReqID_MsgId_Errors
	LocalRequestId := atomic.LoadInt32(&s.params.RequestId)

	SNMPv3Packet, errread := s.makeMessage(oidValue, ReqType, LocalRequestId)
	if errread != nil {
		return ReturnMessage, errread
	}
	p := make([]byte, SNMP_BUFFERSIZE)
	tmms := time.Duration(s.params.TimeoutMs) * time.Millisecond

	writedn := 0
	SendRequest := true
	errread = errors.New("no response from agent")
	for itertry := 0; itertry <= s.params.RetryCount; itertry++ {
		Deadline := time.Now().Add(tmms)

		if SendRequest {
			errread = s.conn.SetWriteDeadline(Deadline)
			if errread != nil {
				continue
			}
			writedn, errread = s.conn.Write(SNMPv3Packet)
			if errread != nil || writedn != len(SNMPv3Packet) {
				continue
			}
			SendRequest = false
		}

		for {
			errread = s.conn.SetReadDeadline(Deadline)
			if errread != nil {
				break
			}

			rlen := 0
			rlen, errread = s.conn.Read(p)
			if errread != nil {
				var nerror net.Error
				if errors.As(errread, &nerror) {
					if nerror.Timeout() {
						SendRequest = true
					}
				}
				break
			}

			ReturnMessage, errread = s.parseResponse(p[:rlen], LocalRequestId)
			if errread == nil {
				return ReturnMessage, nil
			}
			if errors.As(errread, &recerr) {
				if recerr.ErrorStatusCode == PARCE_ERR_WRONGMSGID || recerr.ErrorStatusCode == PARCE_ERR_WRONGREQID {
					// duplicate or stale datagram, keep waiting
					continue
				}
			}
			return ReturnMessage, errread
		}
	}
	return ReturnMessage, errread
}
