package db

import (
	"fmt"
	"strings"
)

// Driver names returned by ParseURL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ParseURL splits a DATABASE_URL into a driver and the string that driver
// opens. "sqlite:///./x.db" is the relative path "./x.db" and
// "sqlite:////var/x.db" is the absolute path "/var/x.db"; postgres URLs are
// passed through untouched.
func ParseURL(databaseURL string) (driver, target string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite:///"):
		path := strings.TrimPrefix(databaseURL, "sqlite:///")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", databaseURL)
	}
}
