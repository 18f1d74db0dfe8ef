package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/catalog"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/send"
	"github.com/fibrewavelabs/fibrewave/internal/mailer"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	"github.com/fibrewavelabs/fibrewave/internal/redis"
	"github.com/fibrewavelabs/fibrewave/internal/registration"
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

		fx.Invoke(func(lc fx.Lifecycle, w *send.Worker, sd fx.Shutdowner) {
			workerCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						_ = w.Run(workerCtx)
						_ = sd.Shutdown()
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}
	return node
}
