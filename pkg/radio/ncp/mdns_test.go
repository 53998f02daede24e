package ncp

import (
	"reflect"
	"testing"
)

func TestTXTRoundTrip(t *testing.T) {
	info := ServiceInfo{InterfaceID: "6f1c2a3e-0c4b-4f53-9d51-3b0a2f7c9e10", Channel: 15}
	txt := EncodeTXT(info)

	got, err := DecodeTXT(txt)
	if err != nil {
		t.Fatalf("DecodeTXT() error = %v", err)
	}
	info.Version = protocolVersion
	if !reflect.DeepEqual(got, info) {
		t.Errorf("DecodeTXT() = %+v, want %+v", got, info)
	}
}

func TestDecodeTXT(t *testing.T) {
	tests := []struct {
		name    string
		txt     []string
		wantErr bool
	}{
		{"minimal", []string{"V=1"}, false},
		{"unknown keys ignored", []string{"V=1", "XX=y", "novalue"}, false},
		{"missing version", []string{"CH=11"}, true},
		{"bad channel", []string{"V=1", "CH=abc"}, true},
		{"bad version", []string{"V=one"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTXT(tt.txt)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeTXT(%v) error = %v, wantErr %v", tt.txt, err, tt.wantErr)
			}
		})
	}
}

func TestServiceAddr(t *testing.T) {
	tests := []struct {
		svc  Service
		want string
	}{
		{Service{Host: "ncp.local.", Port: 7154}, "ncp.local:7154"},
		{Service{Host: "ncp.local.", Port: 7154, Addresses: []string{"192.168.1.20"}}, "192.168.1.20:7154"},
		{Service{Port: 7154, Addresses: []string{"fe80::1"}}, "[fe80::1]:7154"},
	}
	for _, tt := range tests {
		if got := tt.svc.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
