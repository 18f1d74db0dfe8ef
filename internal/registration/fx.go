package registration

import (
	"github.com/fibrewavelabs/fibrewave/internal/registration/repository"
	"github.com/fibrewavelabs/fibrewave/internal/registration/service"
	"go.uber.org/fx"
)

var Module = fx.Module("registration",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
