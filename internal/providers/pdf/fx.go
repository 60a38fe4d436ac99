package pdf

import (
	"github.com/agencydesk/agencydesk/internal/config"
	"go.uber.org/fx"
)

func NewFromConfig(cfg config.Config) Provider {
	return New(cfg.AppName)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(NewFromConfig),
)
