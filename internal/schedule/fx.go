package schedule

import (
	"github.com/tiffinlabs/dabba/internal/schedule/repository"
	"github.com/tiffinlabs/dabba/internal/schedule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("schedule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
