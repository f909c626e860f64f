package db

import (
	"log"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open picks the dialector from the DSN: "file:" URIs, ":memory:" and *.db
// paths use sqlite, everything else is treated as a MySQL DSN.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// Connect is Open for process startup: it exits on failure.
func Connect(dsn string) *gorm.DB {
	gdb, err := Open(dsn)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

func dialector(dsn string) gorm.Dialector {
	if isSQLite(dsn) {
		return gormsqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	}
	return mysql.Open(dsn)
}

func isSQLite(dsn string) bool {
	switch {
	case strings.HasPrefix(dsn, "file:"),
		strings.HasPrefix(dsn, "sqlite://"),
		strings.HasPrefix(dsn, ":memory:"),
		strings.HasSuffix(dsn, ".db"),
		strings.HasSuffix(dsn, ".sqlite"):
		return true
	}
	return false
}
