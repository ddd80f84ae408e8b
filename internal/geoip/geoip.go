// Package geoip resolves viewer IPs to a coarse location for watch and
// share telemetry. Resolution is strictly best effort: a missing or broken
// database disables it without failing startup.
package geoip

import (
	"log/slog"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

type Resolver struct {
	db *maxminddb.Reader
}

type lookupRecord struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
}

func New(dbPath string) (*Resolver, error) {
	if dbPath == "" {
		return &Resolver{}, nil
	}
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		slog.Warn("geoip: failed to open database, location lookup disabled", "path", dbPath, "error", err)
		return &Resolver{}, nil
	}
	slog.Info("geoip: loaded database", "path", dbPath)
	return &Resolver{db: db}, nil
}

// Lookup returns the viewer's country and city, empty strings when the IP is
// unparseable or the database is unavailable.
func (r *Resolver) Lookup(ipStr string) (country, city string) {
	if r.db == nil || ipStr == "" {
		return "", ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "", ""
	}
	var record lookupRecord
	if err := r.db.Lookup(ip, &record); err != nil {
		return "", ""
	}
	country = record.Country.Names["en"]
	if country == "" {
		country = record.Country.ISOCode
	}
	return country, record.City.Names["en"]
}

func (r *Resolver) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
