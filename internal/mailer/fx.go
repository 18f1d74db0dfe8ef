package mailer

import (
	"github.com/fibrewavelabs/fibrewave/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("mailer",
	fx.Provide(New),
)

func New(cfg config.Config, log *zap.Logger) Mailer {
	if cfg.SMTP.Enabled {
		return NewSMTP(cfg, log)
	}
	return NewNop(log)
}
