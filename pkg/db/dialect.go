package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/truestate/sales-backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect selects the store driver from the DATABASE_URL scheme. A bare path
// is treated as an embedded sqlite file.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	url := strings.TrimSpace(cfg.DatabaseURL)
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(strings.TrimPrefix(url, "mysql://")), nil
	case url == "":
		return nil, fmt.Errorf("empty database url")
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("unsupported database url %q", url)
	default:
		return sqlite.Open(url), nil
	}
}
