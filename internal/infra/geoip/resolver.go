// Package geoip resolves donor countries for the donation ledger. Lookups
// are best-effort: a missing database or unknown IP yields an empty code,
// never a failed donation.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Resolver provides country lookups backed by a MaxMind GeoIP2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// Open loads the GeoIP database at path. An empty path disables lookups and
// returns a nil resolver, which is safe to call.
func Open(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// CountryCode returns the ISO country code for the given IP, or "" when the
// resolver is disabled or the address cannot be attributed.
func (r *Resolver) CountryCode(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", nil
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Country.IsoCode, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
