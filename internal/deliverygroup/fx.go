package deliverygroup

import (
	"github.com/tiffinlabs/dabba/internal/deliverygroup/repository"
	"github.com/tiffinlabs/dabba/internal/deliverygroup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("deliverygroup.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
