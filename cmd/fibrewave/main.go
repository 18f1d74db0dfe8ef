package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/catalog"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"github.com/fibrewavelabs/fibrewave/internal/invoice"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/send"
	"github.com/fibrewavelabs/fibrewave/internal/mailer"
	"github.com/fibrewavelabs/fibrewave/internal/migration"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	"github.com/fibrewavelabs/fibrewave/internal/redis"
	"github.com/fibrewavelabs/fibrewave/internal/registration"
	"github.com/fibrewavelabs/fibrewave/internal/scheduler"
	"github.com/fibrewavelabs/fibrewave/internal/server"
	"github.com/fibrewavelabs/fibrewave/internal/settings"
	"github.com/fibrewavelabs/fibrewave/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "fibrewave",
		Short:   "FibreWave billing CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(
		newMigrateCmd(),
		newServeCmd(),
		newSchedulerCmd(),
		newWorkerCmd(),
		newAllCmd(),
		newJobCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema and seed baseline settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runApp(serverInvoke())
			return nil
		},
	}
}

func newSchedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the periodic billing sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			runApp(scheduler.Module, schedulerInvoke())
			return nil
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the invoice email delivery worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			runApp(workerInvoke())
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Migrate, then run API, scheduler and worker in one process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runApp(scheduler.Module, serverInvoke(), schedulerInvoke(), workerInvoke())
			return nil
		},
	}
}

// newJobCmd exposes the scheduled sweeps as one-shot commands for operators.
func newJobCmd() *cobra.Command {
	job := &cobra.Command{
		Use:   "job",
		Short: "Run a single billing sweep and exit",
	}
	jobs := []struct {
		use   string
		short string
		run   func(context.Context, invoicedomain.Service, config.Config) error
	}{
		{"generate-recurring", "Generate due recurring invoices", func(ctx context.Context, svc invoicedomain.Service, _ config.Config) error {
			n, err := svc.GenerateRecurringInvoices(ctx)
			fmt.Printf("generated: %d\n", n)
			return err
		}},
		{"send-automatic", "Dispatch invoices due for sending today", func(ctx context.Context, svc invoicedomain.Service, _ config.Config) error {
			n, err := svc.SendAutomaticInvoices(ctx)
			fmt.Printf("dispatched: %d\n", n)
			return err
		}},
		{"mark-overdue", "Mark past-due invoices overdue", func(ctx context.Context, svc invoicedomain.Service, _ config.Config) error {
			n, err := svc.MarkOverdueInvoices(ctx)
			fmt.Printf("marked: %d\n", n)
			return err
		}},
		{"retry-failed", "Re-dispatch recently failed invoice emails", func(ctx context.Context, svc invoicedomain.Service, cfg config.Config) error {
			n, err := svc.RetryFailedInvoices(ctx, cfg.Scheduler.RetryLookback)
			fmt.Printf("dispatched: %d\n", n)
			return err
		}},
	}
	for _, j := range jobs {
		j := j
		job.AddCommand(&cobra.Command{
			Use:   j.use,
			Short: j.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOneShot(func(ctx context.Context, svc invoicedomain.Service, cfg config.Config) error {
					return j.run(ctx, svc, cfg)
				})
			},
		})
	}
	return job
}

func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,

		catalog.Module,
		settings.Module,
		mailer.Module,
		invoice.Module,
		registration.Module,
	)
}

func runApp(opts ...fx.Option) {
	app := fx.New(append([]fx.Option{coreModules(), server.Module}, opts...)...)
	app.Run()
}

func serverInvoke() fx.Option {
	return fx.Invoke(func(lc fx.Lifecycle, s *server.Server) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error { return s.Start(ctx) },
			OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
		})
	})
}

func schedulerInvoke() fx.Option {
	return fx.Invoke(func(lc fx.Lifecycle, s *scheduler.Scheduler) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error { return s.Start(ctx) },
			OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
		})
	})
}

func workerInvoke() fx.Option {
	return fx.Invoke(func(lc fx.Lifecycle, w *send.Worker) {
		workerCtx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() { _ = w.Run(workerCtx) }()
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	})
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		fx.Invoke(func(gdb *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
			return migration.Run(gdb, node, log)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	return app.Stop(context.Background())
}

func runOneShot(fn func(context.Context, invoicedomain.Service, config.Config) error) error {
	var runErr error
	app := fx.New(
		coreModules(),
		fx.Invoke(func(svc invoicedomain.Service, cfg config.Config) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			runErr = fn(ctx, svc, cfg)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 31*time.Minute)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	if err := app.Stop(context.Background()); err != nil {
		return err
	}
	return runErr
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
