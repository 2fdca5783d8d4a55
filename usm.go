// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"fmt"
	"strings"
)

// ClassifySecurityLevel maps the credential combination onto a USM security
// level. Exactly four combinations of populated protocol/key pairs are
// legal:
//
//	auth pair empty  priv pair empty  → NoAuthNoPriv
//	auth pair set    priv pair empty  → AuthNoPriv
//	auth pair set    priv pair set    → AuthPriv
//	auth pair empty  priv pair set    → rejected
//
// A pair must be populated in both directions: a protocol without its key
// and a key without its protocol are equally invalid. Anything outside the
// table, an unknown protocol name, or an empty username at an auth level,
// is a ConfigError.
func ClassifySecurityLevel(username, authProto, authKey, privProto, privKey string) (seclevel int, intauth int, intpriv int, err error) {
	intauth, err = parseAuthProtocol(authProto)
	if err != nil {
		return 0, 0, 0, err
	}
	intpriv, err = parsePrivProtocol(privProto)
	if err != nil {
		return 0, 0, 0, err
	}

	if intauth == AUTH_PROTOCOL_NONE && intpriv != PRIV_PROTOCOL_NONE {
		return 0, 0, 0, ConfigError{Reason: "invalid security level: privacy requires authentication"}
	}
	if intauth == AUTH_PROTOCOL_NONE && len(authKey) > 0 {
		return 0, 0, 0, ConfigError{Reason: "invalid security level: auth key set without an auth protocol"}
	}
	if intpriv == PRIV_PROTOCOL_NONE && len(privKey) > 0 {
		return 0, 0, 0, ConfigError{Reason: "invalid security level: priv key set without a priv protocol"}
	}

	seclevel = SECLEVEL_NOAUTH_NOPRIV
	if intauth != AUTH_PROTOCOL_NONE {
		seclevel = SECLEVEL_AUTHNOPRIV
		if len(username) == 0 {
			return 0, 0, 0, ConfigError{Reason: "username is required at auth security levels"}
		}
		if len(authKey) == 0 {
			return 0, 0, 0, ConfigError{Reason: "auth key is required when an auth protocol is set"}
		}
	}
	if intpriv != PRIV_PROTOCOL_NONE {
		seclevel = SECLEVEL_AUTHPRIV
		if len(privKey) == 0 {
			return 0, 0, 0, ConfigError{Reason: "priv key is required when a priv protocol is set"}
		}
	}

	return seclevel, intauth, intpriv, nil
}

func parseAuthProtocol(authproto string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(authproto)) {
	case "", "none":
		return AUTH_PROTOCOL_NONE, nil
	case "md5":
		return AUTH_PROTOCOL_MD5, nil
	case "sha", "sha1":
		return AUTH_PROTOCOL_SHA, nil
	}
	return 0, ConfigError{Reason: fmt.Sprintf("unsupported auth protocol: %s", authproto)}
}

func parsePrivProtocol(privproto string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(privproto)) {
	case "", "none":
		return PRIV_PROTOCOL_NONE, nil
	case "des":
		return PRIV_PROTOCOL_DES, nil
	case "3des", "tripledes":
		return PRIV_PROTOCOL_3DES, nil
	case "aes", "aes128":
		return PRIV_PROTOCOL_AES128, nil
	case "aes192":
		return PRIV_PROTOCOL_AES192, nil
	case "aes256":
		return PRIV_PROTOCOL_AES256, nil
	}
	return 0, ConfigError{Reason: fmt.Sprintf("unsupported priv protocol: %s", privproto)}
}
