// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import "fmt"

// SetOutcome names the four terminal states of a SET exchange.
type SetOutcome int

const (
	// OutcomeBindings - the agent committed the SET and returned varbinds.
	OutcomeBindings SetOutcome = iota
	// OutcomeReportError - the agent rejected the message at the USM layer.
	OutcomeReportError
	// OutcomeApplicationError - the agent processed the PDU but refused the
	// operation (errorStatus != 0).
	OutcomeApplicationError
	// OutcomeTransportFailure - no classifiable response arrived.
	OutcomeTransportFailure
)

func (o SetOutcome) String() string {
	switch o {
	case OutcomeBindings:
		return "Bindings"
	case OutcomeReportError:
		return "ReportError"
	case OutcomeApplicationError:
		return "ApplicationError"
	case OutcomeTransportFailure:
		return "TransportFailure"
	}
	return "Unknown"
}

// BindingRecord is one varbind of a successful response, rendered for the
// caller: the agent address, the dotted OID, the canonical type name and
// the formatted value.
type BindingRecord struct {
	Node  string
	Oid   string
	Type  string
	Value string
}

// SetResult is the classified outcome of one SET invocation. Only the
// fields belonging to the Outcome are populated.
type SetResult struct {
	Outcome         SetOutcome
	Bindings        []BindingRecord
	ReportReason    string
	ErrorStatus     int32
	ErrorStatusText string
	ErrorIndex      int32
	TransportCause  string
}

// usmReportReasons translates the distinguished counter OIDs carried by
// Report PDUs (RFC 3414 §3.2, RFC 3412 §7.2) into stable reason strings.
var usmReportReasons = map[string]string{
	"1.3.6.1.6.3.15.1.1.1.0": "unsupported security level",
	"1.3.6.1.6.3.15.1.1.2.0": "not in time window",
	"1.3.6.1.6.3.15.1.1.3.0": "unknown username",
	"1.3.6.1.6.3.15.1.1.4.0": "unknown engine ID",
	"1.3.6.1.6.3.15.1.1.5.0": "wrong digest",
	"1.3.6.1.6.3.15.1.1.6.0": "decryption error",
	"1.3.6.1.6.3.12.1.5.0":   "unknown context",
}

func reportReasonForOID(oid []int) string {
	oidStr := FormatOID(oid)
	if reason, ok := usmReportReasons[oidStr]; ok {
		return reason
	}
	return fmt.Sprintf("unrecognized report OID: %s", oidStr)
}

// SNMPErrorIntToText converts an RFC3416 error-status code to its canonical
// name, or a numeric fallback for codes outside the table.
func SNMPErrorIntToText(code int32) string {
	if name, ok := SNMPErrorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("error-status: %d", code)
}

// classifyExchange maps a fully parsed response onto a SetResult. Pure:
// no I/O, no retries. Report classification wins over the error-status
// fields since a Report's PDU body is diagnostic only.
func classifyExchange(node string, msg SNMPv3_DecodedMessage) SetResult {
	if msg.IsReport {
		reason := "empty report"
		if len(msg.VarBinds) > 0 {
			reason = reportReasonForOID(msg.VarBinds[0].RSnmpOID)
		}
		return SetResult{Outcome: OutcomeReportError, ReportReason: reason}
	}

	if msg.ErrorStatusRaw != sNMP_ErrNoError {
		return SetResult{
			Outcome:         OutcomeApplicationError,
			ErrorStatus:     msg.ErrorStatusRaw,
			ErrorStatusText: SNMPErrorIntToText(msg.ErrorStatusRaw),
			ErrorIndex:      msg.ErrorIndexRaw,
		}
	}

	records := make([]BindingRecord, 0, len(msg.VarBinds))
	for _, vb := range msg.VarBinds {
		records = append(records, BindingRecord{
			Node:  node,
			Oid:   FormatOID(vb.RSnmpOID),
			Type:  Convert_ClassTag_to_String(vb.RSnmpVar),
			Value: Convert_Variable_To_String(vb.RSnmpVar),
		})
	}
	return SetResult{Outcome: OutcomeBindings, Bindings: records}
}

func transportFailure(format string, args ...interface{}) SetResult {
	return SetResult{Outcome: OutcomeTransportFailure, TransportCause: fmt.Sprintf(format, args...)}
}
