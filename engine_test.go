// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"bytes"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

var testEngineID = []byte{0x80, 0x00, 0x1f, 0x88, 0x80, 0xca, 0xfe, 0x01, 0x02, 0x03}

type agentRequest struct {
	MsgID     int32
	RequestID int32
	PDUType   int
	VarBinds  []SNMP_VarBind
}

// parseAgentRequest decodes an unauthenticated request the way an agent
// would, enough for the mock to correlate its replies.
func parseAgentRequest(datagram []byte) (agentRequest, error) {
	var req agentRequest
	var pkt SNMPv3_Packet
	if _, err := ASNber.Unmarshal(datagram, &pkt); err != nil {
		return req, err
	}
	var gd SNMPv3_GlobalData
	if _, err := ASNber.Unmarshal(pkt.GlobalData.FullBytes, &gd); err != nil {
		return req, err
	}
	var sp SNMPv3_ScopedPDU
	if _, err := ASNber.Unmarshal(pkt.PtData.FullBytes, &sp); err != nil {
		return req, err
	}
	if len(sp.PDUData.FullBytes) == 0 {
		return req, errors.New("no PDU")
	}
	req.PDUType = sp.PDUData.Tag
	sp.PDUData.FullBytes[0] = 0x30
	var body SNMP_PDU_Body
	if _, err := ASNber.Unmarshal(sp.PDUData.FullBytes, &body); err != nil {
		return req, err
	}
	req.MsgID = gd.MsgID
	req.RequestID = body.RequestID
	req.VarBinds = body.VarBinds
	return req, nil
}

// buildAgentReply assembles an unauthenticated agent response or report.
func buildAgentReply(msgID int32, reqID int32, pduType int, errStatus int32, errIndex int32, varbinds []SNMP_VarBind) ([]byte, error) {
	var pkt SNMPv3_Packet
	pkt.Version = 3

	var gd SNMPv3_GlobalData
	gd.MsgID = msgID
	gd.MsgMaxSize = int(SNMP_DEFAULTMSGSITE)
	gd.MsgFlag = []byte{0}
	gd.MsgSecurityModel = msgSecurityModel_USM
	gdBytes, err := ASNber.Marshal(gd)
	if err != nil {
		return nil, err
	}
	pkt.GlobalData.FullBytes = gdBytes

	var sec SNMPv3_SecSeq
	sec.AuthEng = testEngineID
	sec.Boots = 7
	sec.Time = 1234
	secBytes, err := ASNber.Marshal(sec)
	if err != nil {
		return nil, err
	}
	pkt.SecuritySettings = secBytes

	var body SNMP_PDU_Body
	body.RequestID = reqID
	body.ErrorStatusRaw = errStatus
	body.ErrorIndexRaw = errIndex
	body.VarBinds = varbinds
	bodyBytes, err := ASNber.Marshal(body)
	if err != nil {
		return nil, err
	}
	pure, err := ASNber.ExtractDataWOTagAndLen(bodyBytes)
	if err != nil {
		return nil, err
	}

	var sp SNMPv3_ScopedPDU
	sp.ContextEngineId = testEngineID
	sp.PDUData = ASNber.RawValue{Class: ASNber.ClassContextSpecific, Tag: pduType, IsCompound: true, Bytes: pure}
	spBytes, err := ASNber.Marshal(sp)
	if err != nil {
		return nil, err
	}
	pkt.PtData.FullBytes = spBytes

	return ASNber.Marshal(pkt)
}

func unknownEngineReportBinds() []SNMP_VarBind {
	return []SNMP_VarBind{{oidUnknownEngineID,
		ASNber.RawValue{Class: ASNber.ClassApplication, Tag: SNMP_type_COUNTER32, Bytes: []byte{1}}}}
}

// startMockAgent runs a UDP responder on the loopback. The handler returns
// the datagrams to send back, nil to stay silent. The counter tracks every
// received datagram including unanswered ones.
func startMockAgent(t *testing.T, handler func(req agentRequest) [][]byte) (ip string, port int, counter *int32) {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })

	var count int32
	go func() {
		buf := make([]byte, SNMP_BUFFERSIZE)
		for {
			n, addr, rerr := pc.ReadFrom(buf)
			if rerr != nil {
				return
			}
			atomic.AddInt32(&count, 1)
			datagram := make([]byte, n)
			copy(datagram, buf[:n])
			req, perr := parseAgentRequest(datagram)
			if perr != nil {
				continue
			}
			for _, reply := range handler(req) {
				if len(reply) > 0 {
					pc.WriteTo(reply, addr)
				}
			}
		}
	}()

	udpaddr := pc.LocalAddr().(*net.UDPAddr)
	return udpaddr.IP.String(), udpaddr.Port, &count
}

func testTarget(ip string, port int) NetworkTarget {
	var Target NetworkTarget
	Target.IPaddress = ip
	Target.Port = port
	Target.SNMPparameters.Username = "simpleuser"
	Target.SNMPparameters.TimeoutMs = 2000
	Target.SNMPparameters.RetryCount = 1
	return Target
}

func Test_SNMPv3Set_NoAuthNoPriv_Bindings(t *testing.T) {
	ip, port, _ := startMockAgent(t, func(req agentRequest) [][]byte {
		switch req.PDUType {
		case SNMPv2_REQUEST_GET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REPORT, 0, 0, unknownEngineReportBinds())
			return [][]byte{reply}
		case SNMPv2_REQUEST_SET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REQUEST_RESPONSE, 0, 0, req.VarBinds)
			return [][]byte{reply}
		}
		return nil
	})

	res, err := SNMPv3_Set(testTarget(ip, port), "1.3.6.1.2.1.1.6.0", "s", "rack 7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeBindings {
		t.Fatalf("Outcome = %v (%s %s)", res.Outcome, res.ReportReason, res.TransportCause)
	}
	if len(res.Bindings) != 1 {
		t.Fatalf("Bindings = %d records", len(res.Bindings))
	}
	b := res.Bindings[0]
	if b.Oid != "1.3.6.1.2.1.1.6.0" || b.Type != "OctetString" || b.Value != "rack 7" {
		t.Errorf("record = %+v", b)
	}
	if b.Node != ip {
		t.Errorf("Node = %q, want %q", b.Node, ip)
	}
}

func Test_SNMPv3Set_ApplicationError(t *testing.T) {
	ip, port, _ := startMockAgent(t, func(req agentRequest) [][]byte {
		switch req.PDUType {
		case SNMPv2_REQUEST_GET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REPORT, 0, 0, unknownEngineReportBinds())
			return [][]byte{reply}
		case SNMPv2_REQUEST_SET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REQUEST_RESPONSE, 2, 1, req.VarBinds)
			return [][]byte{reply}
		}
		return nil
	})

	res, err := SNMPv3_Set(testTarget(ip, port), "1.3.6.1.2.1.1.6.0", "s", "rack 7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeApplicationError {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	if res.ErrorStatus != 2 || res.ErrorStatusText != "noSuchName" || res.ErrorIndex != 1 {
		t.Errorf("status=%d text=%q index=%d", res.ErrorStatus, res.ErrorStatusText, res.ErrorIndex)
	}
}

func Test_SNMPv3Set_ReportOnSet(t *testing.T) {
	UnknownUserBinds := []SNMP_VarBind{{ASNber.ObjectIdentifier([]int{1, 3, 6, 1, 6, 3, 15, 1, 1, 3, 0}),
		ASNber.RawValue{Class: ASNber.ClassApplication, Tag: SNMP_type_COUNTER32, Bytes: []byte{1}}}}

	ip, port, _ := startMockAgent(t, func(req agentRequest) [][]byte {
		switch req.PDUType {
		case SNMPv2_REQUEST_GET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REPORT, 0, 0, unknownEngineReportBinds())
			return [][]byte{reply}
		case SNMPv2_REQUEST_SET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REPORT, 0, 0, UnknownUserBinds)
			return [][]byte{reply}
		}
		return nil
	})

	res, err := SNMPv3_Set(testTarget(ip, port), "1.3.6.1.2.1.1.6.0", "s", "rack 7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeReportError {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	if res.ReportReason != "unknown username" {
		t.Errorf("ReportReason = %q", res.ReportReason)
	}
}

func Test_SNMPv3Set_RetryExhaustion(t *testing.T) {
	ip, port, counter := startMockAgent(t, func(req agentRequest) [][]byte {
		return nil
	})

	Target := testTarget(ip, port)
	Target.SNMPparameters.TimeoutMs = 100
	Target.SNMPparameters.RetryCount = 2

	res, err := SNMPv3_Set(Target, "1.3.6.1.2.1.1.6.0", "s", "rack 7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeTransportFailure {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(counter); got != 3 {
		t.Errorf("silent agent received %d datagrams, want exactly 3 for retry count 2", got)
	}
}

func Test_SNMPv3Set_IgnoresMismatchedMsgID(t *testing.T) {
	ip, port, _ := startMockAgent(t, func(req agentRequest) [][]byte {
		switch req.PDUType {
		case SNMPv2_REQUEST_GET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REPORT, 0, 0, unknownEngineReportBinds())
			return [][]byte{reply}
		case SNMPv2_REQUEST_SET:
			stale, _ := buildAgentReply(req.MsgID+1, req.RequestID, SNMPv2_REQUEST_RESPONSE, 0, 0, req.VarBinds)
			good, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REQUEST_RESPONSE, 0, 0, req.VarBinds)
			return [][]byte{stale, good}
		}
		return nil
	})

	Target := testTarget(ip, port)
	Target.SNMPparameters.RetryCount = 2

	res, err := SNMPv3_Set(Target, "1.3.6.1.2.1.1.6.0", "s", "rack 7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeBindings {
		t.Fatalf("Outcome = %v, the stale datagram must be skipped", res.Outcome)
	}
}

// A burst of stale datagrams must only re-arm the read, never spend the
// attempt budget: with zero retries the single attempt still has to survive
// several mismatched responses arriving before the real one.
func Test_SNMPv3Set_StaleBurstWithinOneAttempt(t *testing.T) {
	ip, port, _ := startMockAgent(t, func(req agentRequest) [][]byte {
		switch req.PDUType {
		case SNMPv2_REQUEST_GET:
			reply, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REPORT, 0, 0, unknownEngineReportBinds())
			return [][]byte{reply}
		case SNMPv2_REQUEST_SET:
			staleMsg, _ := buildAgentReply(req.MsgID+1, req.RequestID, SNMPv2_REQUEST_RESPONSE, 0, 0, req.VarBinds)
			staleReq, _ := buildAgentReply(req.MsgID, req.RequestID+1, SNMPv2_REQUEST_RESPONSE, 0, 0, req.VarBinds)
			good, _ := buildAgentReply(req.MsgID, req.RequestID, SNMPv2_REQUEST_RESPONSE, 0, 0, req.VarBinds)
			return [][]byte{staleMsg, staleReq, staleMsg, good}
		}
		return nil
	})

	Target := testTarget(ip, port)
	Target.SNMPparameters.RetryCount = 0

	res, err := SNMPv3_Set(Target, "1.3.6.1.2.1.1.6.0", "s", "rack 7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeBindings {
		t.Fatalf("Outcome = %v (%s), stale datagrams must not spend attempts", res.Outcome, res.TransportCause)
	}
}

func Test_SNMPv3Set_FatalBeforeNetwork(t *testing.T) {
	Target := testTarget("127.0.0.1", 1)

	Target.SNMPparameters.PrivProtocol = "aes"
	Target.SNMPparameters.PrivKey = "privpass"
	_, err := SNMPv3_Set(Target, "1.3.6.1.2.1.1.6.0", "s", "v")
	var cfgerr ConfigError
	if !errors.As(err, &cfgerr) {
		t.Errorf("priv without auth: error = %v, want ConfigError", err)
	}

	Target = testTarget("not-an-ip", 161)
	_, err = SNMPv3_Set(Target, "1.3.6.1.2.1.1.6.0", "s", "v")
	if !errors.As(err, &cfgerr) {
		t.Errorf("bad address: error = %v, want ConfigError", err)
	}

	Target = testTarget("127.0.0.1", 1)
	var encerr EncodingError
	_, err = SNMPv3_Set(Target, "1.3.6.1.2.1.1.6.0", "z", "v")
	if !errors.As(err, &encerr) {
		t.Errorf("unknown tag: error = %v, want EncodingError", err)
	}

	_, err = SNMPv3_Set(Target, "not.an.oid", "s", "v")
	if !errors.As(err, &encerr) {
		t.Errorf("bad OID: error = %v, want EncodingError", err)
	}
}

// authPrivSession builds a session with discovered engine data and localized
// keys, the state right after a successful discovery.
func authPrivSession(authProto int, privProto int) *setSession {
	s := &setSession{ipaddress: "127.0.0.1", port: 161}
	s.params.Username = "secureuser"
	s.params.AuthProtocol = authProto
	s.params.PrivProtocol = privProto
	s.params.SecurityLevel = SECLEVEL_AUTHPRIV
	s.params.EngineID = testEngineID
	s.params.ContextEngineId = testEngineID
	s.params.RBoots = 7
	s.params.RTime = 1234
	s.params.MessageId = 1000
	s.params.RequestId = 2000
	s.params.DataFlag = (1 << msgFlag_Reportable_Bit) | (1 << msgFlag_Authenticated_Bit) | (1 << msgFlag_Encrypted_Bit)
	s.params.PrivParameter = 42
	s.params.PrivParameterDes = 42
	s.params.LocalizedKeyAuth = makeLocalizedKey("authpassword", testEngineID, authProto)
	kp := makeLocalizedKey("privpassword", testEngineID, authProto)
	s.params.LocalizedKeyPriv = expandPrivKey(kp, privProto, authProto, testEngineID)
	return s
}

// The builder and the parser must agree on the full auth plus privacy
// pipeline: digest splice-in, IV derivation, padding.
func Test_Message_AuthPriv_RoundTrip(t *testing.T) {
	TestCases := []struct {
		Name      string
		AuthProto int
		PrivProto int
	}{
		{"md5 aes128", AUTH_PROTOCOL_MD5, PRIV_PROTOCOL_AES128},
		{"sha aes256", AUTH_PROTOCOL_SHA, PRIV_PROTOCOL_AES256},
		{"md5 des", AUTH_PROTOCOL_MD5, PRIV_PROTOCOL_DES},
		{"sha 3des", AUTH_PROTOCOL_SHA, PRIV_PROTOCOL_3DES},
	}

	for _, tc := range TestCases {
		s := authPrivSession(tc.AuthProto, tc.PrivProto)
		tv, err := EncodeValue("s", "rack 7")
		if err != nil {
			t.Fatalf("%s: %v", tc.Name, err)
		}
		VarBinds := []SNMP_VarBind{{ASNber.ObjectIdentifier([]int{1, 3, 6, 1, 2, 1, 1, 6, 0}), Convert_setvar_toasn1raw(tv)}}

		msg, merr := s.makeMessage(VarBinds, SNMPv2_REQUEST_SET, s.params.RequestId)
		if merr != nil {
			t.Fatalf("%s: makeMessage: %v", tc.Name, merr)
		}

		decoded, perr := s.parseResponse(msg, s.params.RequestId)
		if perr != nil {
			t.Fatalf("%s: parseResponse: %v", tc.Name, perr)
		}
		if len(decoded.VarBinds) != 1 {
			t.Fatalf("%s: varbinds = %d", tc.Name, len(decoded.VarBinds))
		}
		vb := decoded.VarBinds[0]
		if FormatOID(vb.RSnmpOID) != "1.3.6.1.2.1.1.6.0" {
			t.Errorf("%s: OID = %s", tc.Name, FormatOID(vb.RSnmpOID))
		}
		if !bytes.Equal(vb.RSnmpVar.Value, []byte("rack 7")) {
			t.Errorf("%s: value = %v", tc.Name, vb.RSnmpVar.Value)
		}
	}
}

// A flipped payload byte must fail digest verification.
func Test_Message_DigestRejectsTampering(t *testing.T) {
	s := authPrivSession(AUTH_PROTOCOL_SHA, PRIV_PROTOCOL_AES128)
	tv, _ := EncodeValue("i", "1")
	VarBinds := []SNMP_VarBind{{ASNber.ObjectIdentifier([]int{1, 3, 6, 1, 2, 1, 1, 7, 0}), Convert_setvar_toasn1raw(tv)}}

	msg, merr := s.makeMessage(VarBinds, SNMPv2_REQUEST_SET, s.params.RequestId)
	if merr != nil {
		t.Fatal(merr)
	}
	msg[len(msg)-1] ^= 0xff
	_, perr := s.parseResponse(msg, s.params.RequestId)
	if perr == nil {
		t.Fatal("tampered message must not verify")
	}
}
