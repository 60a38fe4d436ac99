package server

import (
	"io"
	"net/http"
	"strings"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) UploadStatement(c *gin.Context) {
	carrier := strings.TrimSpace(c.PostForm("carrier"))
	period := strings.TrimSpace(c.PostForm("period"))

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "statement file is required"))
		return
	}
	if header.Size > s.cfg.MaxUploadBytes {
		AbortWithError(c, newValidationError("file", "file_too_large", "statement file exceeds the upload limit"))
		return
	}

	f, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.statementSvc.Upload(c.Request.Context(), statementdomain.UploadRequest{
		Carrier:  carrier,
		Period:   period,
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListImports(c *gin.Context) {
	resp, err := s.statementSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetImport(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp, err := s.statementSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteImport(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.statementSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func parseID(c *gin.Context, param string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(c.Param(param))
	if err != nil {
		return 0, newValidationError(param, "invalid_"+param, "invalid identifier")
	}
	return id, nil
}
