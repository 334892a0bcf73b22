package wallet

import (
	"github.com/tiffinlabs/dabba/internal/wallet/repository"
	"github.com/tiffinlabs/dabba/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
