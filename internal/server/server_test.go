package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	agentrepo "github.com/agencydesk/agencydesk/internal/agent/repository"
	"github.com/agencydesk/agencydesk/internal/clock"
	"github.com/agencydesk/agencydesk/internal/config"
	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	payrollrepo "github.com/agencydesk/agencydesk/internal/payroll/repository"
	payrollservice "github.com/agencydesk/agencydesk/internal/payroll/service"
	"github.com/agencydesk/agencydesk/internal/providers/pdf"
	reconservice "github.com/agencydesk/agencydesk/internal/recon/service"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	salerepo "github.com/agencydesk/agencydesk/internal/sale/repository"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	statementrepo "github.com/agencydesk/agencydesk/internal/statement/repository"
	statementservice "github.com/agencydesk/agencydesk/internal/statement/service"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	tierrepo "github.com/agencydesk/agencydesk/internal/tier/repository"
	tierservice "github.com/agencydesk/agencydesk/internal/tier/service"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const universalCSV = `PolicyNumber,InsuredName,TransactionType,Written,Rate,Commission,ExpirationDate
UPC100,Alice Smith,New Business,1000.00,10%,100.00,01/15/2025
UPC200,Bob Jones,Cancellation,(250.00),10%,(25.00),03/01/2025
`

type serverEnv struct {
	engine *gin.Engine
	node   *snowflake.Node

	admin    agentdomain.Agent
	manager  agentdomain.Agent
	producer agentdomain.Agent
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// a second pooled connection to :memory: would see an empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&agentdomain.Agent{},
		&saledomain.Sale{},
		&tierdomain.CommissionTier{},
		&statementdomain.StatementImport{},
		&statementdomain.StatementLine{},
		&payrolldomain.PayrollRecord{},
		&payrolldomain.PayrollAgentLine{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	cfg := config.Config{
		AppName:            "AgencyDesk Test",
		NameMatchThreshold: 0.85,
		MaxUploadBytes:     1 << 20,
	}
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	agents := agentrepo.NewRepository(db)
	sales := salerepo.NewRepository(db)
	imports := statementrepo.NewRepository(db)
	tiers := tierrepo.NewRepository(db)

	statementSvc := statementservice.NewService(statementservice.ServiceParam{
		Repository: imports,
		Cfg:        cfg,
		Log:        log,
		GenID:      node,
		Clock:      clk,
	})
	reconSvc := reconservice.NewService(reconservice.ServiceParam{
		Imports: imports,
		Sales:   sales,
		Agents:  agents,
		Tiers: tierservice.NewResolver(tierservice.ResolverParam{
			Repository: tiers,
			Sales:      sales,
		}),
		Cfg:   cfg,
		Log:   log,
		Clock: clk,
	})
	payrollSvc := payrollservice.NewService(payrollservice.ServiceParam{
		Repository: payrollrepo.NewRepository(db),
		Recon:      reconSvc,
		Imports:    imports,
		Log:        log,
		GenID:      node,
		Clock:      clk,
	})
	tierSvc := tierservice.NewService(tierservice.ServiceParam{
		Repository: tiers,
		Log:        log,
		GenID:      node,
	})

	engine := NewEngine()
	NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		DB:           db,
		GenID:        node,
		Log:          log,
		StatementSvc: statementSvc,
		ReconSvc:     reconSvc,
		PayrollSvc:   payrollSvc,
		TierSvc:      tierSvc,
		PDFProvider:  pdf.New(cfg.AppName),
	})

	env := &serverEnv{engine: engine, node: node}
	env.admin = env.seedAgent(t, db, "admin", "Admin User", agentdomain.RoleAdmin)
	env.manager = env.seedAgent(t, db, "morgan", "Morgan Lee", agentdomain.RoleManager)
	env.producer = env.seedAgent(t, db, "dana", "Dana Reed", agentdomain.RoleProducer)

	tier := tierdomain.CommissionTier{
		ID: node.Generate(), TierLevel: 1,
		MinWrittenPremium: decimal.Zero,
		CommissionRate:    decimal.NewFromFloat(0.10),
		IsActive:          true,
	}
	require.NoError(t, db.Create(&tier).Error)

	sale := saledomain.Sale{
		ID: node.Generate(), PolicyNumber: "UPC100", Carrier: "universal",
		WrittenPremium: decimal.NewFromInt(1000), ProducerID: env.producer.ID,
		ClientName: "Alice Smith",
		SaleDate:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&sale).Error)

	return env
}

func (e *serverEnv) seedAgent(t *testing.T, db *gorm.DB, username, name string, role agentdomain.Role) agentdomain.Agent {
	t.Helper()
	a := agentdomain.Agent{
		ID: e.node.Generate(), Email: username + "@agency.test", Username: username,
		FullName: name, Role: role, IsActive: true,
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func (e *serverEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, actor *agentdomain.Agent) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if actor != nil {
		req.Header.Set(HeaderActorID, actor.ID.String())
		req.Header.Set(HeaderActorRole, string(actor.Role))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *serverEnv) upload(t *testing.T, actor *agentdomain.Agent, carrier, period, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("carrier", carrier))
	require.NoError(t, mw.WriteField("period", period))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return e.do(t, http.MethodPost, "/admin/reconciliation/upload", &buf, mw.FormDataContentType(), actor)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var envelope errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error
}

func TestAdminRoutesRequireIdentityHeaders(t *testing.T) {
	env := newServerEnv(t)

	w := env.do(t, http.MethodGet, "/admin/reconciliation/imports", nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/reconciliation/imports", nil)
	req.Header.Set(HeaderActorID, env.admin.ID.String())
	req.Header.Set(HeaderActorRole, "superuser")
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffRoutesRejectProducers(t *testing.T) {
	env := newServerEnv(t)

	w := env.do(t, http.MethodGet, "/admin/reconciliation/imports", nil, "", &env.producer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// delete is admin only, even for managers
	w = env.do(t, http.MethodDelete, "/admin/reconciliation/imports/123", nil, "", &env.manager)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadMatchAndFetchImport(t *testing.T) {
	env := newServerEnv(t)

	w := env.upload(t, &env.admin, "universal", "2025-02", "universal_feb.csv", universalCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded statementdomain.UploadResult
	decodeData(t, w, &uploaded)
	assert.Equal(t, 2, uploaded.Import.TotalRows)
	assert.Equal(t, "750", uploaded.Import.TotalPremium.String())

	w = env.do(t, http.MethodPost, "/admin/reconciliation/imports/"+uploaded.Import.ID+"/match", nil, "", &env.manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var matched struct {
		NewlyMatched int `json:"newly_matched"`
		Unmatched    int `json:"unmatched"`
	}
	decodeData(t, w, &matched)
	assert.Equal(t, 1, matched.NewlyMatched)
	assert.Equal(t, 1, matched.Unmatched)

	w = env.do(t, http.MethodGet, "/admin/reconciliation/imports/"+uploaded.Import.ID, nil, "", &env.manager)
	require.Equal(t, http.StatusOK, w.Code)

	var detail statementdomain.ImportDetail
	decodeData(t, w, &detail)
	assert.Len(t, detail.MatchedLines, 1)
	assert.Len(t, detail.UnmatchedLines, 1)
	assert.Equal(t, "UPC100", detail.MatchedLines[0].PolicyNumber)
}

func TestRepeatUploadCarriesDuplicateAdvisory(t *testing.T) {
	env := newServerEnv(t)

	w := env.upload(t, &env.admin, "universal", "2025-02", "universal_feb.csv", universalCSV)
	require.Equal(t, http.StatusOK, w.Code)
	var first statementdomain.UploadResult
	decodeData(t, w, &first)
	assert.Nil(t, first.DuplicateAdvisory)

	w = env.upload(t, &env.admin, "universal", "2025-02", "universal_feb_again.csv", universalCSV)
	require.Equal(t, http.StatusOK, w.Code)
	var second statementdomain.UploadResult
	decodeData(t, w, &second)
	require.NotNil(t, second.DuplicateAdvisory)
	assert.Equal(t, []string{first.Import.ID}, second.DuplicateAdvisory.ExistingImportIDs)
}

func TestUnknownImportReturns404(t *testing.T) {
	env := newServerEnv(t)

	w := env.do(t, http.MethodGet, "/admin/reconciliation/imports/123456789", nil, "", &env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Type)
}

func TestUploadParseFailureReturns400(t *testing.T) {
	env := newServerEnv(t)

	w := env.upload(t, &env.admin, "other", "2025-02", "mystery.csv", "Foo,Bar\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parse_error", decodeError(t, w).Type)
}

func TestPayrollLifecycleOverHTTP(t *testing.T) {
	env := newServerEnv(t)

	w := env.upload(t, &env.admin, "universal", "2025-02", "universal_feb.csv", universalCSV)
	require.Equal(t, http.StatusOK, w.Code)
	var uploaded statementdomain.UploadResult
	decodeData(t, w, &uploaded)

	w = env.do(t, http.MethodPost, "/admin/reconciliation/imports/"+uploaded.Import.ID+"/match", nil, "", &env.admin)
	require.Equal(t, http.StatusOK, w.Code)

	// mark-paid before any submission
	w = env.do(t, http.MethodPost, "/admin/payroll/2025-02/mark-paid", nil, "", &env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := strings.NewReader(`{"agent_overrides":{"` + env.producer.ID.String() + `":{"bonus":"50"}}}`)
	w = env.do(t, http.MethodPost, "/admin/payroll/2025-02/submit", body, "application/json", &env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var detail payrolldomain.Detail
	decodeData(t, w, &detail)
	assert.Equal(t, payrolldomain.PayrollSubmitted, detail.Record.Status)
	require.Len(t, detail.Agents, 1)
	assert.Equal(t, "50", detail.Agents[0].Bonus.String())

	// the period is now locked
	w = env.do(t, http.MethodPost, "/admin/payroll/2025-02/submit", nil, "", &env.admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "payroll_state_conflict", decodeError(t, w).Type)

	// unlock is admin only
	w = env.do(t, http.MethodPost, "/admin/payroll/2025-02/unlock", nil, "", &env.manager)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/admin/payroll/2025-02/unlock", nil, "", &env.admin)
	require.Equal(t, http.StatusOK, w.Code)

	// back to draft, so paying out is a state conflict again
	w = env.do(t, http.MethodPost, "/admin/payroll/2025-02/mark-paid", nil, "", &env.admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/admin/payroll/history", nil, "", &env.manager)
	require.Equal(t, http.StatusOK, w.Code)
	var history []payrolldomain.PayrollRecord
	decodeData(t, w, &history)
	assert.Len(t, history, 1)
}

func TestAgentSheetProducerScope(t *testing.T) {
	env := newServerEnv(t)

	w := env.upload(t, &env.admin, "universal", "2025-02", "universal_feb.csv", universalCSV)
	require.Equal(t, http.StatusOK, w.Code)
	var uploaded statementdomain.UploadResult
	decodeData(t, w, &uploaded)
	w = env.do(t, http.MethodPost, "/admin/reconciliation/imports/"+uploaded.Import.ID+"/match", nil, "", &env.admin)
	require.Equal(t, http.StatusOK, w.Code)

	own := "/admin/reconciliation/agent-sheet/2025-02/" + env.producer.ID.String()
	w = env.do(t, http.MethodGet, own, nil, "", &env.producer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sheet struct {
		Agent struct {
			AgentName string `json:"agent_name"`
		} `json:"agent"`
	}
	decodeData(t, w, &sheet)
	assert.Equal(t, "Dana Reed", sheet.Agent.AgentName)

	foreign := "/admin/reconciliation/agent-sheet/2025-02/" + env.admin.ID.String()
	w = env.do(t, http.MethodGet, foreign, nil, "", &env.producer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, own+"/pdf", nil, "", &env.producer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestTierEndpoints(t *testing.T) {
	env := newServerEnv(t)

	w := env.do(t, http.MethodGet, "/admin/tiers", nil, "", &env.manager)
	require.Equal(t, http.StatusOK, w.Code)
	var tiers []tierdomain.Response
	decodeData(t, w, &tiers)
	require.Len(t, tiers, 1)

	body := strings.NewReader(`{"tier_level":2,"min_written_premium":"50000","commission_rate":"0.125"}`)
	w = env.do(t, http.MethodPost, "/admin/tiers", body, "application/json", &env.manager)
	assert.Equal(t, http.StatusForbidden, w.Code)

	body = strings.NewReader(`{"tier_level":2,"min_written_premium":"50000","commission_rate":"0.125"}`)
	w = env.do(t, http.MethodPost, "/admin/tiers", body, "application/json", &env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// tier levels are unique
	body = strings.NewReader(`{"tier_level":2,"min_written_premium":"60000","commission_rate":"0.13"}`)
	w = env.do(t, http.MethodPost, "/admin/tiers", body, "application/json", &env.admin)
	assert.Equal(t, http.StatusConflict, w.Code)
}
