package agent

import (
	"github.com/agencydesk/agencydesk/internal/agent/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("agent.directory",
	fx.Provide(repository.NewRepository),
)
