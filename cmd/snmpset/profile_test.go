// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	SNMPSet "github.com/nettools-grp/snmpsetv3"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func Test_LoadProfile(t *testing.T) {
	path := writeProfile(t, `host: 10.0.0.1
port: 1161
username: admin
auth_protocol: sha
auth_password: authpass
priv_protocol: aes
priv_password: privpass
timeout_ms: 500
retry_count: 2
`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Host != "10.0.0.1" || p.Port != 1161 || p.Username != "admin" {
		t.Errorf("profile = %+v", p)
	}
	if p.RetryCount == nil || *p.RetryCount != 2 {
		t.Errorf("RetryCount = %v, want 2", p.RetryCount)
	}
}

func Test_LoadProfile_Rejects(t *testing.T) {
	BadProfiles := []struct {
		Name    string
		Content string
	}{
		{"missing host", "username: admin\n"},
		{"bad port", "host: 10.0.0.1\nport: 70000\n"},
		{"bad auth protocol", "host: 10.0.0.1\nauth_protocol: sha512\n"},
		{"bad retry count", "host: 10.0.0.1\nretry_count: 11\n"},
		{"not yaml", "host: [unterminated\n"},
	}
	for _, tc := range BadProfiles {
		path := writeProfile(t, tc.Content)
		if _, err := LoadProfile(path); err == nil {
			t.Errorf("%s: expected error", tc.Name)
		}
	}
}

func Test_ApplyProfile_ExplicitZeroRetry(t *testing.T) {
	path := writeProfile(t, `host: 10.0.0.1
retry_count: 0
`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}

	var target SNMPSet.NetworkTarget
	target.SNMPparameters.RetryCount = 5
	ApplyProfile(p, &target)
	if target.SNMPparameters.RetryCount != 0 {
		t.Errorf("RetryCount = %d, an explicit retry_count: 0 must apply", target.SNMPparameters.RetryCount)
	}
}

func Test_ApplyProfile_AbsentKeysKeepFlags(t *testing.T) {
	path := writeProfile(t, "host: 10.0.0.2\n")
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}

	var target SNMPSet.NetworkTarget
	target.SNMPparameters.Username = "flaguser"
	target.SNMPparameters.TimeoutMs = 700
	target.SNMPparameters.RetryCount = 4
	ApplyProfile(p, &target)
	if target.IPaddress != "10.0.0.2" {
		t.Errorf("IPaddress = %q", target.IPaddress)
	}
	if target.SNMPparameters.Username != "flaguser" || target.SNMPparameters.TimeoutMs != 700 || target.SNMPparameters.RetryCount != 4 {
		t.Errorf("absent profile keys must not clobber flag values: %+v", target.SNMPparameters)
	}
}
