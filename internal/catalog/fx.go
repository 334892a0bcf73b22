package catalog

import (
	"github.com/tiffinlabs/dabba/internal/catalog/repository"
	"github.com/tiffinlabs/dabba/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
