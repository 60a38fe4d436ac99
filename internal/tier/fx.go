package tier

import (
	"github.com/agencydesk/agencydesk/internal/tier/repository"
	"github.com/agencydesk/agencydesk/internal/tier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tier.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
