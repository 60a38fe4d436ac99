package server

import (
	"net/http"

	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	"github.com/gin-gonic/gin"
)

type submitPayrollRequest struct {
	AgentOverrides map[string]payrolldomain.AgentOverride `json:"agent_overrides"`
}

func (s *Server) SubmitPayroll(c *gin.Context) {
	var req submitPayrollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	detail, err := s.payrollSvc.Submit(c.Request.Context(), c.Param("period"), req.AgentOverrides, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) MarkPayrollPaid(c *gin.Context) {
	detail, err := s.payrollSvc.MarkPaid(c.Request.Context(), c.Param("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) UnlockPayroll(c *gin.Context) {
	detail, err := s.payrollSvc.Unlock(c.Request.Context(), c.Param("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) PayrollHistory(c *gin.Context) {
	records, err := s.payrollSvc.History(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) PayrollDetail(c *gin.Context) {
	detail, err := s.payrollSvc.Detail(c.Request.Context(), c.Param("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}
