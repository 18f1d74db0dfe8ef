package catalog

import (
	"github.com/fibrewavelabs/fibrewave/internal/catalog/repository"
	"github.com/fibrewavelabs/fibrewave/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
