package settings

import (
	"github.com/fibrewavelabs/fibrewave/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings",
	fx.Provide(service.New),
)
