package sales

import (
	"github.com/truestate/sales-backend/internal/sales/repository"
	"github.com/truestate/sales-backend/internal/sales/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sales.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
