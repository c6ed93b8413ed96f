package discovery

import (
	"errors"
	"testing"
)

func TestServiceDescriptorIsResolved(t *testing.T) {
	var nilSvc *ServiceDescriptor
	if nilSvc.IsResolved() {
		t.Error("nil descriptor should not be resolved")
	}

	svc := &ServiceDescriptor{Name: "printer"}
	if svc.IsResolved() {
		t.Error("descriptor without addresses should not be resolved")
	}

	svc.Addresses = []string{}
	if svc.IsResolved() {
		t.Error("descriptor with empty addresses should not be resolved")
	}

	svc.Addresses = []string{"10.0.0.5"}
	if !svc.IsResolved() {
		t.Error("descriptor with addresses should be resolved")
	}
}

func TestServiceDescriptorClone(t *testing.T) {
	orig := &ServiceDescriptor{
		Name:      "printer",
		FullName:  "printer._ipp._tcp.local.",
		Host:      "printer.local",
		Port:      631,
		Addresses: []string{"10.0.0.5"},
		TXT:       TXTRecordMap{"ver": "1"},
	}

	c := orig.Clone()
	c.Addresses[0] = "10.0.0.6"
	c.TXT["ver"] = "2"

	if orig.Addresses[0] != "10.0.0.5" {
		t.Errorf("clone aliases addresses: orig = %v", orig.Addresses)
	}
	if orig.TXT["ver"] != "1" {
		t.Errorf("clone aliases TXT: orig = %v", orig.TXT)
	}
	if c.Host != orig.Host || c.Port != orig.Port || c.FullName != orig.FullName {
		t.Errorf("clone lost pass-through fields: %+v", c)
	}

	var nilSvc *ServiceDescriptor
	if nilSvc.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestServiceTypeName(t *testing.T) {
	tests := []struct {
		serviceType, protocol, want string
	}{
		{"http", "tcp", "_http._tcp"},
		{"_ipp", "_tcp", "_ipp._tcp"},
		{"airplay", "udp", "_airplay._udp"},
	}

	for _, tt := range tests {
		if got := ServiceTypeName(tt.serviceType, tt.protocol); got != tt.want {
			t.Errorf("ServiceTypeName(%q, %q) = %q, want %q", tt.serviceType, tt.protocol, got, tt.want)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	if got := NormalizeDomain("local."); got != "local" {
		t.Errorf("NormalizeDomain(local.) = %q, want local", got)
	}
	if got := NormalizeDomain("local"); got != "local" {
		t.Errorf("NormalizeDomain(local) = %q, want local", got)
	}
}

func TestValidateScan(t *testing.T) {
	if err := ValidateScan("http", "tcp"); err != nil {
		t.Errorf("ValidateScan(http, tcp) = %v, want nil", err)
	}
	if err := ValidateScan("_", "tcp"); !errors.Is(err, ErrEmptyServiceType) {
		t.Errorf("ValidateScan(_, tcp) = %v, want ErrEmptyServiceType", err)
	}
	if err := ValidateScan("http", ""); !errors.Is(err, ErrEmptyProtocol) {
		t.Errorf("ValidateScan(http, \"\") = %v, want ErrEmptyProtocol", err)
	}
}
