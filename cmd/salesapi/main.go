package main

import (
	"github.com/truestate/sales-backend/internal/config"
	"github.com/truestate/sales-backend/internal/migration"
	"github.com/truestate/sales-backend/internal/observability"
	"github.com/truestate/sales-backend/internal/server"
	"github.com/truestate/sales-backend/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		db.Module,

		// Schema + HTTP surface
		migration.Module,
		server.Module,
	)
	app.Run()
}
