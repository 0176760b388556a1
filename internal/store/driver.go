package store

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Values accepted for DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteBusyTimeoutMs makes concurrent writers (request path and the
// device sweeper) wait for the file lock instead of failing with SQLITE_BUSY.
const sqliteBusyTimeoutMs = 5000

// dialectorFor maps a configured driver name and DSN to a gorm dialector.
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(dsn)), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// sqliteDSN adds a busy timeout to file databases unless the DSN
// already sets its own options.
func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "?") {
		return dsn
	}
	return fmt.Sprintf("%s?_busy_timeout=%d", dsn, sqliteBusyTimeoutMs)
}
