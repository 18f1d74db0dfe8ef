package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/catalog"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice"
	"github.com/fibrewavelabs/fibrewave/internal/mailer"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	"github.com/fibrewavelabs/fibrewave/internal/redis"
	"github.com/fibrewavelabs/fibrewave/internal/registration"
	"github.com/fibrewavelabs/fibrewave/internal/scheduler"
	"github.com/fibrewavelabs/fibrewave/internal/settings"
	"github.com/fibrewavelabs/fibrewave/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		redis.Module,

		catalog.Module,
		settings.Module,
		mailer.Module,
		invoice.Module,
		registration.Module,

		scheduler.Module,
		fx.Invoke(func(lc fx.Lifecycle, s *scheduler.Scheduler) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error { return s.Start(ctx) },
				OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
			})
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
