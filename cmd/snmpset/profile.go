// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	SNMPSet "github.com/nettools-grp/snmpsetv3"
)

// Profile holds one agent plus its credentials, loadable from YAML so the
// secrets stay out of shell history.
type Profile struct {
	Host         string `yaml:"host" validate:"required"`
	Port         int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
	Username     string `yaml:"username"`
	AuthProtocol string `yaml:"auth_protocol" validate:"omitempty,oneof=none md5 sha sha1"`
	AuthPassword string `yaml:"auth_password"`
	PrivProtocol string `yaml:"priv_protocol" validate:"omitempty,oneof=none des 3des aes aes128 aes192 aes256"`
	PrivPassword string `yaml:"priv_password"`
	Context      string `yaml:"context"`
	TimeoutMs    int    `yaml:"timeout_ms" validate:"omitempty,min=1,max=60000"`
	// Pointer so an explicit retry_count: 0 is distinguishable from the
	// key being absent.
	RetryCount *int `yaml:"retry_count" validate:"omitempty,min=0,max=10"`
}

// LoadProfile reads and validates a YAML profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	validate := validator.New()
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

// ApplyProfile copies profile fields onto the target. Profile values win
// over command line flags only where the profile actually sets them.
func ApplyProfile(p *Profile, t *SNMPSet.NetworkTarget) {
	t.IPaddress = p.Host
	if p.Port != 0 {
		t.Port = p.Port
	}
	if p.Username != "" {
		t.SNMPparameters.Username = p.Username
	}
	if p.AuthProtocol != "" {
		t.SNMPparameters.AuthProtocol = p.AuthProtocol
	}
	if p.AuthPassword != "" {
		t.SNMPparameters.AuthKey = p.AuthPassword
	}
	if p.PrivProtocol != "" {
		t.SNMPparameters.PrivProtocol = p.PrivProtocol
	}
	if p.PrivPassword != "" {
		t.SNMPparameters.PrivKey = p.PrivPassword
	}
	if p.Context != "" {
		t.SNMPparameters.ContextName = p.Context
	}
	if p.TimeoutMs != 0 {
		t.SNMPparameters.TimeoutMs = p.TimeoutMs
	}
	if p.RetryCount != nil {
		t.SNMPparameters.RetryCount = *p.RetryCount
	}
}
