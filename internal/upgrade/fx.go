package upgrade

import (
	"github.com/tiffinlabs/dabba/internal/upgrade/repository"
	"github.com/tiffinlabs/dabba/internal/upgrade/service"
	"go.uber.org/fx"
)

var Module = fx.Module("upgrade.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
