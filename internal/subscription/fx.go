package subscription

import (
	"github.com/tiffinlabs/dabba/internal/subscription/repository"
	"github.com/tiffinlabs/dabba/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
