// Package geoip resolves the country recorded on usage records from the
// client address.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when no override matches and no database is loaded.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// Resolver checks configured network overrides first, then a MaxMind GeoIP2
// country database. Private and loopback addresses never reach the database.
type Resolver struct {
	reader    *geoip2.Reader
	overrides []override
}

type override struct {
	network *net.IPNet
	country string
}

// Open loads the database at path and parses overrides, which map an IP or
// CIDR to an ISO country code. It returns nil when both are empty.
func Open(path string, overrides map[string]string) (*Resolver, error) {
	var reader *geoip2.Reader
	if strings.TrimSpace(path) != "" {
		var err error
		reader, err = geoip2.Open(path)
		if err != nil {
			return nil, fmt.Errorf("geoip: open database: %w", err)
		}
	}
	if reader == nil && len(overrides) == 0 {
		return nil, nil
	}
	r, err := New(reader, overrides)
	if err != nil && reader != nil {
		reader.Close()
	}
	return r, err
}

// New builds a resolver from an open reader, which may be nil.
func New(reader *geoip2.Reader, overrides map[string]string) (*Resolver, error) {
	r := &Resolver{reader: reader}
	for key, country := range overrides {
		network, err := parseNetwork(key)
		if err != nil {
			return nil, err
		}
		country = strings.ToUpper(strings.TrimSpace(country))
		if len(country) != 2 {
			return nil, fmt.Errorf("geoip: override %s: invalid country %q", key, country)
		}
		r.overrides = append(r.overrides, override{network: network, country: country})
	}
	return r, nil
}

func parseNetwork(key string) (*net.IPNet, error) {
	key = strings.TrimSpace(key)
	if strings.Contains(key, "/") {
		_, network, err := net.ParseCIDR(key)
		if err != nil {
			return nil, fmt.Errorf("geoip: override %q: %w", key, err)
		}
		return network, nil
	}
	ip := net.ParseIP(key)
	if ip == nil {
		return nil, fmt.Errorf("geoip: override %q: invalid ip", key)
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

// CountryCode returns the upper-case ISO code for ip, or "" when the address
// is private or the database has no country for it.
func (r *Resolver) CountryCode(ip string) (string, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	if r == nil {
		return "", ErrUnavailable
	}
	for _, o := range r.overrides {
		if o.network.Contains(parsed) {
			return o.country, nil
		}
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return "", nil
	}
	if r.reader == nil {
		return "", ErrUnavailable
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return strings.ToUpper(record.Country.IsoCode), nil
}

func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
