package statement

import (
	"github.com/agencydesk/agencydesk/internal/statement/repository"
	"github.com/agencydesk/agencydesk/internal/statement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("statement.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
