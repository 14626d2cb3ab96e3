package util

import (
	"net"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipDB    *geoip2.Reader
	geoipCache *cache.Cache
)

// InitGeoIP opens a local GeoIP2/GeoLite2 .mmdb file and prepares the
// lookup cache. When dbPath is empty (and GEOIP_DB_PATH is unset) the
// initialization is a no-op and GetIPLocation returns empty values.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}

	geoipDB = r
	geoipCache = cache.New(12*time.Hour, 1*time.Hour)
	return nil
}

// CloseGeoIP releases the mmdb reader, if one was opened.
func CloseGeoIP() {
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

type ipLocation struct {
	City    string
	Country string
}

// GetIPLocation resolves an IP address to (city, country) using the local
// GeoIP database. Results are cached. Loopback, invalid, and unresolvable
// addresses yield empty strings.
func GetIPLocation(ip string) (string, string) {
	if geoipDB == nil || ip == "" {
		return "", ""
	}

	if cached, ok := geoipCache.Get(ip); ok {
		if loc, ok := cached.(ipLocation); ok {
			return loc.City, loc.Country
		}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() {
		return "", ""
	}

	record, err := geoipDB.City(parsed)
	if err != nil {
		return "", ""
	}

	loc := ipLocation{
		City:    record.City.Names["en"],
		Country: record.Country.Names["en"],
	}
	geoipCache.Set(ip, loc, cache.DefaultExpiration)
	return loc.City, loc.Country
}
