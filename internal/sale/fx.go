package sale

import (
	"github.com/agencydesk/agencydesk/internal/sale/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.book",
	fx.Provide(repository.NewRepository),
)
