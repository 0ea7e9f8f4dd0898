package migration

import (
	"github.com/truestate/sales-backend/internal/sales/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// The schema is a single denormalized table, so startup migration is a
// plain AutoMigrate. There is no versioning to manage.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return Run(conn)
	}),
)

// Run creates or updates the sales_transactions table.
func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(&domain.Transaction{})
}
