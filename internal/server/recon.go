package server

import (
	"io"
	"net/http"
	"strings"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *Server) MatchImport(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp, err := s.reconSvc.Match(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CalculateImport(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp, err := s.reconSvc.CalculateImport(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type manualMatchRequest struct {
	SaleID string `json:"sale_id"`
}

func (s *Server) ManualMatchLine(c *gin.Context) {
	lineID, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req manualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	saleID, err := snowflakeFromString(req.SaleID, "sale_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reconSvc.ManualMatch(c.Request.Context(), lineID, saleID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RunMonthlyPay(c *gin.Context) {
	resp, err := s.reconSvc.MonthlyPay(c.Request.Context(), c.Param("period"), nil)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgentSheet(c *gin.Context) {
	sheet, err := s.agentSheetFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sheet})
}

func (s *Server) GetAgentSheetPDF(c *gin.Context) {
	sheet, err := s.agentSheetFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateAgentSheet(c.Request.Context(), sheet)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := "agent-sheet-" + sheet.Period + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) agentSheetFromRequest(c *gin.Context) (*recondomain.AgentSheet, error) {
	agentID, err := parseID(c, "agent_id")
	if err != nil {
		return nil, err
	}

	// producers see their own sheet only
	if actorRole(c) == agentdomain.RoleProducer && actorID(c) != agentID {
		return nil, ErrForbidden
	}

	adjustment, err := decimalQuery(c, "rate_adjustment")
	if err != nil {
		return nil, err
	}
	bonus, err := decimalQuery(c, "bonus")
	if err != nil {
		return nil, err
	}

	return s.reconSvc.AgentSheet(c.Request.Context(), c.Param("period"), agentID, adjustment, bonus)
}

func snowflakeFromString(raw, field string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(field, "invalid_"+field, "invalid id")
	}
	return id, nil
}

func decimalQuery(c *gin.Context, name string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, newValidationError(name, "invalid_"+name, "invalid decimal value")
	}
	return d, nil
}
