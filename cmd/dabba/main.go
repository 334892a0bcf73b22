package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/tiffinlabs/dabba/internal/clock"
	"github.com/tiffinlabs/dabba/internal/config"
	"github.com/tiffinlabs/dabba/internal/migration"
	"github.com/tiffinlabs/dabba/internal/server"
	"github.com/tiffinlabs/dabba/pkg/db"
	pkglog "github.com/tiffinlabs/dabba/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		pkglog.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("snowflake node: %v", err)
	}
	return node
}
