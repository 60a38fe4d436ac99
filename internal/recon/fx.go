package recon

import (
	"github.com/agencydesk/agencydesk/internal/recon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recon.service",
	fx.Provide(service.NewService),
)
