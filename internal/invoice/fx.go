package invoice

import (
	"github.com/fibrewavelabs/fibrewave/internal/invoice/render"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/repository"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/send"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(repository.Provide),
	fx.Provide(render.New),
	fx.Provide(send.NewQueue),
	fx.Provide(send.NewOrchestrator),
	fx.Provide(send.NewWorker),
	fx.Provide(service.New),
)
