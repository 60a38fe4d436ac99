package payroll

import (
	"github.com/agencydesk/agencydesk/internal/payroll/repository"
	"github.com/agencydesk/agencydesk/internal/payroll/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payroll.ledger",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
