//go:build !cgo_sqlite

// Pure Go SQLite driver via modernc.org/sqlite. This is the default;
// no CGO toolchain required.
package markers

import (
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	driverType = "purego"
)
