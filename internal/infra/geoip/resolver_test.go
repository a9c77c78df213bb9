package geoip

import (
	"errors"
	"testing"
)

func TestCountryCodeOverrides(t *testing.T) {
	r, err := New(nil, map[string]string{
		"127.0.0.1":     "id",
		"10.20.0.0/16":  "SG",
		"2001:db8::/32": "my",
		"198.51.100.7 ": " au ",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name    string
		ip      string
		want    string
		wantErr error
	}{
		{name: "exact loopback", ip: "127.0.0.1", want: "ID"},
		{name: "cidr", ip: "10.20.3.4", want: "SG"},
		{name: "ipv6 cidr", ip: "2001:db8::1", want: "MY"},
		{name: "trimmed public", ip: "198.51.100.7", want: "AU"},
		{name: "private outside overrides", ip: "10.21.0.1", want: ""},
		{name: "ipv6 loopback", ip: "::1", want: ""},
		{name: "public without database", ip: "203.0.113.9", wantErr: ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.CountryCode(tc.ip)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("CountryCode(%q) error = %v, want %v", tc.ip, err, tc.wantErr)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("CountryCode(%q) = %q, %v, want %q", tc.ip, got, err, tc.want)
			}
		})
	}

	if _, err := r.CountryCode("not-an-ip"); err == nil {
		t.Fatal("expected error for invalid ip")
	}
}

func TestNewRejectsBadOverrides(t *testing.T) {
	for _, overrides := range []map[string]string{
		{"10.0.0.0/33": "ID"},
		{"example.com": "ID"},
		{"10.0.0.1": "IDN"},
	} {
		if _, err := New(nil, overrides); err == nil {
			t.Fatalf("New(%v) expected error", overrides)
		}
	}
}

func TestOpenWithNothingConfigured(t *testing.T) {
	r, err := Open("", nil)
	if err != nil || r != nil {
		t.Fatalf("Open = %v, %v, want nil resolver", r, err)
	}
	if _, err := r.CountryCode("203.0.113.9"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil resolver error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	if _, err := Open("/nonexistent/GeoLite2-Country.mmdb", nil); err == nil {
		t.Fatal("expected error for missing database")
	}
}
