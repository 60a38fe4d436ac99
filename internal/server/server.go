package server

import (
	"context"
	"net/http"
	"time"

	"github.com/agencydesk/agencydesk/internal/agent"
	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	"github.com/agencydesk/agencydesk/internal/clock"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/payroll"
	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	"github.com/agencydesk/agencydesk/internal/providers/pdf"
	"github.com/agencydesk/agencydesk/internal/recon"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	"github.com/agencydesk/agencydesk/internal/sale"
	"github.com/agencydesk/agencydesk/internal/statement"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/agencydesk/agencydesk/internal/tier"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(
		NewEngine,
		newIDNode,
		clock.System,
	),
	agent.Module,
	sale.Module,
	tier.Module,
	statement.Module,
	recon.Module,
	payroll.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func newIDNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node
	log    *zap.Logger

	statementSvc statementdomain.Service
	reconSvc     recondomain.Service
	payrollSvc   payrolldomain.Service
	tierSvc      tierdomain.Service
	pdfProvider  pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node
	Log   *zap.Logger

	StatementSvc statementdomain.Service
	ReconSvc     recondomain.Service
	PayrollSvc   payrolldomain.Service
	TierSvc      tierdomain.Service
	PDFProvider  pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		log:          p.Log,
		statementSvc: p.StatementSvc,
		reconSvc:     p.ReconSvc,
		payrollSvc:   p.PayrollSvc,
		tierSvc:      p.TierSvc,
		pdfProvider:  p.PDFProvider,
	}

	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.ActorRequired())

	staff := s.RequireRole(agentdomain.RoleAdmin, agentdomain.RoleManager)
	adminOnly := s.RequireRole(agentdomain.RoleAdmin)

	rec := admin.Group("/reconciliation")
	{
		rec.POST("/upload", staff, s.UploadStatement)
		rec.GET("/imports", staff, s.ListImports)
		rec.GET("/imports/:id", staff, s.GetImport)
		rec.DELETE("/imports/:id", adminOnly, s.DeleteImport)
		rec.POST("/imports/:id/match", staff, s.MatchImport)
		rec.POST("/imports/:id/calculate", staff, s.CalculateImport)
		rec.POST("/lines/:id/match", staff, s.ManualMatchLine)
		rec.POST("/monthly-pay/:period", staff, s.RunMonthlyPay)
		rec.GET("/monthly-pay/:period", staff, s.RunMonthlyPay)

		// producers may view their own sheet; the handler enforces it
		rec.GET("/agent-sheet/:period/:agent_id", s.GetAgentSheet)
		rec.GET("/agent-sheet/:period/:agent_id/pdf", s.GetAgentSheetPDF)
	}

	pay := admin.Group("/payroll")
	{
		pay.POST("/:period/submit", staff, s.SubmitPayroll)
		pay.POST("/:period/mark-paid", staff, s.MarkPayrollPaid)
		pay.POST("/:period/unlock", adminOnly, s.UnlockPayroll)
		pay.GET("/history", staff, s.PayrollHistory)
		pay.GET("/:period", staff, s.PayrollDetail)
	}

	admin.GET("/tiers", staff, s.ListTiers)
	admin.POST("/tiers", adminOnly, s.CreateTier)
}
