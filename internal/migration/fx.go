package migration

import (
	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	"github.com/agencydesk/agencydesk/internal/config"
	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	"github.com/agencydesk/agencydesk/internal/seed"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite is for local runs; the gorm models are the schema
			if err := conn.AutoMigrate(
				&agentdomain.Agent{},
				&saledomain.Sale{},
				&tierdomain.CommissionTier{},
				&statementdomain.StatementImport{},
				&statementdomain.StatementLine{},
				&payrolldomain.PayrollRecord{},
				&payrolldomain.PayrollAgentLine{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDefaultTiers {
			return seed.EnsureDefaultTiers(conn)
		}
		return nil
	}),
)
