package service

import (
	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	"github.com/agencydesk/agencydesk/internal/clock"
	"github.com/agencydesk/agencydesk/internal/config"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Imports statementdomain.Repository
	Sales   saledomain.Repository
	Agents  agentdomain.Repository
	Tiers   tierdomain.Resolver
	Cfg     config.Config
	Log     *zap.Logger
	Clock   clock.Clock
}

type service struct {
	imports statementdomain.Repository
	sales   saledomain.Repository
	agents  agentdomain.Repository
	tiers   tierdomain.Resolver
	cfg     config.Config
	log     *zap.Logger
	clock   clock.Clock
}

func NewService(p ServiceParam) recondomain.Service {
	return &service{
		imports: p.Imports,
		sales:   p.Sales,
		agents:  p.Agents,
		tiers:   p.Tiers,
		cfg:     p.Cfg,
		log:     p.Log,
		clock:   p.Clock,
	}
}
