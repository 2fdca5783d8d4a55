// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import "fmt"

// ConfigError reports an invalid target or credential combination detected
// before any packet is built. Fatal, never retried.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// EncodingError reports a value that cannot be converted to its wire form
// under the requested type tag. Fatal, never retried.
type EncodingError struct {
	TypeTag string
	Reason  string
}

func (e EncodingError) Error() string {
	if len(e.TypeTag) > 0 {
		return fmt.Sprintf("encoding error (%s): %s", e.TypeTag, e.Reason)
	}
	return fmt.Sprintf("encoding error: %s", e.Reason)
}

// SNMPwrongReqID_MsgId_Errors marks a response whose msgID or requestID does
// not match the outstanding request. The receive loop keeps waiting when it
// sees one of these: late or duplicated UDP responses are not failures.
type SNMPwrongReqID_MsgId_Errors struct {
	ErrorStatusCode uint8
}

func (e SNMPwrongReqID_MsgId_Errors) Error() string {
	switch e.ErrorStatusCode {
	case PARCE_ERR_WRONGMSGID:
		return "Wrong MsgID"
	case PARCE_ERR_WRONGREQID:
		return "Wrong RequestID"
	}
	return "unknown error code"
}
