// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT

package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	SNMPSet "github.com/nettools-grp/snmpsetv3"
)

const (
	exitOk        = 0
	exitSnmpError = 1
	exitTransport = 2
	exitUsage     = 3
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: snmpset [flags] OID TYPE VALUE")
	fmt.Fprintln(os.Stderr, "TYPE: i (Integer), u (Unsigned), s (String), x (HexString),")
	fmt.Fprintln(os.Stderr, "      d (DecimalString), n (NullObject), o (ObjectIdentifier),")
	fmt.Fprintln(os.Stderr, "      t (TimeTicks), a (IPAddress)")
	flag.PrintDefaults()
}

func main() {
	Host := flag.String("h", "", "Agent IP address or hostname")
	Port := flag.Int("p", 161, "Agent UDP port")
	SNMPuser := flag.String("u", "", "SNMP v3 USER")
	SNMPv3Context := flag.String("context", "", "SNMP v3 context")
	SNMPauthProtocol := flag.String("a", "", "SNMP auth protocol: md5 or sha")
	SNMPauthPassword := flag.String("A", "", "SNMP auth password")
	SNMPprivProtocol := flag.String("x", "", "SNMP priv protocol: des, 3des, aes, aes192 or aes256")
	SNMPprivPassword := flag.String("X", "", "SNMP priv password")
	TimeoutMs := flag.Int("t", 3000, "Timeout per attempt in milliseconds")
	RetryCount := flag.Int("r", 1, "Retry count, total attempts is retry+1")
	DebugLevel := flag.Int("debug", 0, "Debug level")
	ProfilePath := flag.String("profile", "", "YAML profile with agent and credentials")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 {
		usage()
		os.Exit(exitUsage)
	}
	StrOid := flag.Arg(0)
	StrType := flag.Arg(1)
	StrValue := flag.Arg(2)

	var TargetDev SNMPSet.NetworkTarget
	TargetDev.IPaddress = *Host
	TargetDev.Port = *Port
	TargetDev.SNMPparameters.Username = *SNMPuser
	TargetDev.SNMPparameters.AuthProtocol = *SNMPauthProtocol
	TargetDev.SNMPparameters.AuthKey = *SNMPauthPassword
	TargetDev.SNMPparameters.PrivProtocol = *SNMPprivProtocol
	TargetDev.SNMPparameters.PrivKey = *SNMPprivPassword
	TargetDev.SNMPparameters.ContextName = *SNMPv3Context
	TargetDev.SNMPparameters.TimeoutMs = *TimeoutMs
	TargetDev.SNMPparameters.RetryCount = *RetryCount
	TargetDev.DebugLevel = uint8(*DebugLevel)

	if *ProfilePath != "" {
		Profile, ProfileErr := LoadProfile(*ProfilePath)
		if ProfileErr != nil {
			fmt.Fprintln(os.Stderr, ProfileErr)
			os.Exit(exitUsage)
		}
		ApplyProfile(Profile, &TargetDev)
	}

	if TargetDev.IPaddress == "" {
		fmt.Fprintln(os.Stderr, "agent address is required (-h or profile)")
		os.Exit(exitUsage)
	}

	// The library wants a literal IP, hostnames get resolved here.
	if net.ParseIP(TargetDev.IPaddress) == nil {
		IPaddr, ResolveErr := net.ResolveIPAddr("ip", TargetDev.IPaddress)
		if ResolveErr != nil {
			fmt.Fprintln(os.Stderr, "cannot resolve host:", ResolveErr)
			os.Exit(exitTransport)
		}
		TargetDev.IPaddress = IPaddr.IP.String()
	}

	Result, SetErr := SNMPSet.SNMPv3_Set(TargetDev, StrOid, StrType, StrValue)
	if SetErr != nil {
		fmt.Fprintln(os.Stderr, SetErr)
		os.Exit(exitUsage)
	}

	switch Result.Outcome {
	case SNMPSet.OutcomeBindings:
		for _, Binding := range Result.Bindings {
			fmt.Println(Binding.Oid, "=", Binding.Value, ":", Binding.Type)
		}
		os.Exit(exitOk)
	case SNMPSet.OutcomeReportError:
		fmt.Fprintln(os.Stderr, "agent report:", Result.ReportReason)
		os.Exit(exitSnmpError)
	case SNMPSet.OutcomeApplicationError:
		fmt.Fprintf(os.Stderr, "agent error: %s (status %d, index %d)\n",
			Result.ErrorStatusText, Result.ErrorStatus, Result.ErrorIndex)
		os.Exit(exitSnmpError)
	case SNMPSet.OutcomeTransportFailure:
		fmt.Fprintln(os.Stderr, "transport failure:", Result.TransportCause)
		os.Exit(exitTransport)
	}
}
