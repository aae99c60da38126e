package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/dto"
	"github.com/SscSPs/xero_import_app/internal/handlers"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/SscSPs/xero_import_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
)

const companyPath = "/api/v1/companies/7"

var fixedNow = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

type HandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	imports    *MockImportService
	coding     *MockCodingService
	credential *MockCredentialService
	ledger     *MockLedgerService
	payroll    *MockPayrollService
	advisor    *MockAdvisorService
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterValidators())

	suite.imports = new(MockImportService)
	suite.coding = new(MockCodingService)
	suite.credential = new(MockCredentialService)
	suite.ledger = new(MockLedgerService)
	suite.payroll = new(MockPayrollService)
	suite.advisor = new(MockAdvisorService)

	suite.router = suite.newRouter(nil)
}

func (suite *HandlerTestSuite) newRouter(l *limiter.Limiter) *gin.Engine {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	cfg := &config.Config{IsProduction: true, FrontendBaseURL: "http://app.test"}
	container := &portssvc.ServiceContainer{
		Import:     suite.imports,
		Coding:     suite.coding,
		Credential: suite.credential,
		Ledger:     suite.ledger,
		Payroll:    suite.payroll,
		Advisor:    suite.advisor,
	}
	handlers.RegisterRoutes(r, cfg, container, l, nil)
	return r
}

func (suite *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestInvalidCompanyID() {
	w := suite.do(http.MethodGet, "/api/v1/companies/abc/credentials", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.credential.AssertNotCalled(suite.T(), "GetCredential")
}

// --- Credentials ---

func (suite *HandlerTestSuite) TestSaveCredentials_Success() {
	cred := &domain.OAuthCredential{CompanyID: 7, ClientID: "client", ClientSecret: "shh", Scope: "offline_access"}
	suite.credential.On("SaveClientCredentials", mock.Anything, int64(7), "client", "shh", "").Return(cred, nil).Once()

	w := suite.do(http.MethodPost, companyPath+"/credentials", dto.SaveCredentialRequest{ClientID: "client", ClientSecret: "shh"})

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "shh")
	body := suite.decode(w)
	suite.Equal(true, body["hasClientSecret"])
	suite.Equal("credentialed", body["state"])
	suite.credential.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestSaveCredentials_MissingSecret() {
	w := suite.do(http.MethodPost, companyPath+"/credentials", map[string]string{"clientId": "client"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.credential.AssertNotCalled(suite.T(), "SaveClientCredentials")
}

func (suite *HandlerTestSuite) TestGetCredentials_NotFound() {
	suite.credential.On("GetCredential", mock.Anything, int64(7)).Return(nil, apperrors.NewNotFoundError("no credentials")).Once()
	w := suite.do(http.MethodGet, companyPath+"/credentials", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestDisconnect() {
	suite.credential.On("Disconnect", mock.Anything, int64(7)).Return(nil).Once()
	w := suite.do(http.MethodDelete, companyPath+"/credentials/tokens", nil)
	suite.Equal(http.StatusNoContent, w.Code)
	suite.credential.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestConnect_NotConfigured() {
	suite.credential.On("ConnectURL", mock.Anything, int64(7)).Return("", apperrors.ErrNotConfigured).Once()
	w := suite.do(http.MethodGet, companyPath+"/xero/connect", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(false, suite.decode(w)["needsReconnect"])
}

func (suite *HandlerTestSuite) TestConnect_ReturnsAuthURL() {
	suite.credential.On("ConnectURL", mock.Anything, int64(7)).Return("https://login.xero.com/authorize?state=s", nil).Once()
	w := suite.do(http.MethodGet, companyPath+"/xero/connect", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("https://login.xero.com/authorize?state=s", suite.decode(w)["authUrl"])
}

func (suite *HandlerTestSuite) TestCallback_Success() {
	suite.credential.On("CompleteAuthorization", mock.Anything, "the-code", "the-state").Return(int64(7), nil).Once()
	w := suite.do(http.MethodGet, "/api/v1/xero/callback?code=the-code&state=the-state", nil)

	suite.Equal(http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	suite.Require().NoError(err)
	suite.Equal("/xero", loc.Path)
	suite.Equal("connected", loc.Query().Get("success"))
	suite.Equal("7", loc.Query().Get("companyId"))
}

func (suite *HandlerTestSuite) TestCallback_Failure() {
	suite.credential.On("CompleteAuthorization", mock.Anything, "", "forged").Return(int64(0), apperrors.ErrUnauthorized).Once()
	w := suite.do(http.MethodGet, "/api/v1/xero/callback?state=forged", nil)

	suite.Equal(http.StatusFound, w.Code)
	suite.Contains(w.Header().Get("Location"), "error=authorization_failed")
}

func (suite *HandlerTestSuite) TestCallback_XeroDenied() {
	w := suite.do(http.MethodGet, "/api/v1/xero/callback?error=access_denied", nil)
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("http://app.test/xero?error=access_denied", w.Header().Get("Location"))
	suite.credential.AssertNotCalled(suite.T(), "CompleteAuthorization")
}

// --- Imports and staged transactions ---

func (suite *HandlerTestSuite) TestImportStatement() {
	csvBody := "Bank Account,Date,Payee\n"
	summary := domain.ImportSummary{Parsed: 3, Saved: 2, Duplicates: 1}
	suite.imports.On("ImportStatement", mock.Anything, int64(7), "march.csv", csvBody).Return(summary, nil).Once()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "march.csv")
	suite.Require().NoError(err)
	_, err = part.Write([]byte(csvBody))
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, companyPath+"/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal(true, body["success"])
	suite.Equal("Parsed 3 transactions, saved 2 new records", body["message"])
	suite.EqualValues(1, body["duplicates"])
	suite.imports.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestImportStatement_NoFile() {
	w := suite.do(http.MethodPost, companyPath+"/imports", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.imports.AssertNotCalled(suite.T(), "ImportStatement")
}

func (suite *HandlerTestSuite) TestListTransactions_PassesFilter() {
	rows := []domain.StagedTransaction{{ID: 3, CompanyID: 7, Payee: "ACME", Status: domain.StatusCoded}}
	suite.imports.On("ListTransactions", mock.Anything, int64(7), mock.MatchedBy(func(f domain.TransactionFilter) bool {
		return f.Status != nil && *f.Status == domain.StatusCoded && f.WageOnly && f.Limit == 20 && f.PageToken == "abc"
	})).Return(rows, "next", nil).Once()

	w := suite.do(http.MethodGet, companyPath+"/transactions?status=coded&filter=wage&limit=20&pageToken=abc", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 1)
	suite.Equal("next", resp.NextPageToken)
	suite.imports.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestListTransactions_RejectsUnknownStatus() {
	w := suite.do(http.MethodGet, companyPath+"/transactions?status=archived", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.imports.AssertNotCalled(suite.T(), "ListTransactions")
}

func (suite *HandlerTestSuite) TestListTransactions_BadPageToken() {
	suite.imports.On("ListTransactions", mock.Anything, int64(7), mock.Anything).
		Return(nil, "", apperrors.NewBadRequestError("invalid page token")).Once()
	w := suite.do(http.MethodGet, companyPath+"/transactions?pageToken=zzz", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("invalid page token", suite.decode(w)["error"])
}

func (suite *HandlerTestSuite) TestUpdateTransaction() {
	code := "404"
	updated := &domain.StagedTransaction{ID: 9, AccountCode: &code, Status: domain.StatusCoded}
	suite.imports.On("UpdateTransaction", mock.Anything, int64(7), int64(9), mock.MatchedBy(func(p domain.TransactionPatch) bool {
		return p.AccountCode != nil && *p.AccountCode == "404" && p.AccountName == nil && p.Status != nil && *p.Status == domain.StatusCoded
	})).Return(updated, nil).Once()

	w := suite.do(http.MethodPatch, companyPath+"/transactions/9", map[string]string{"accountCode": "404", "status": "coded"})

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("404", suite.decode(w)["accountCode"])
}

func (suite *HandlerTestSuite) TestUpdateTransaction_InvalidID() {
	w := suite.do(http.MethodPatch, companyPath+"/transactions/nope", map[string]string{"status": "coded"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTransaction_NotFound() {
	suite.imports.On("DeleteTransaction", mock.Anything, int64(7), int64(5)).Return(apperrors.ErrNotFound).Once()
	w := suite.do(http.MethodDelete, companyPath+"/transactions/5", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestBulkUpdateAndClear() {
	suite.imports.On("BulkUpdateTransactions", mock.Anything, int64(7), []int64{1, 2}, mock.Anything).Return(int64(2), nil).Once()
	w := suite.do(http.MethodPatch, companyPath+"/transactions", map[string]any{"ids": []int64{1, 2}, "status": "skipped"})
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(2, suite.decode(w)["updated"])

	w = suite.do(http.MethodPatch, companyPath+"/transactions", map[string]any{"ids": []int64{}, "status": "skipped"})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.imports.On("ClearTransactions", mock.Anything, int64(7)).Return(int64(12), nil).Once()
	w = suite.do(http.MethodDelete, companyPath+"/transactions", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(12, suite.decode(w)["deleted"])
	suite.imports.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestApplyCoding() {
	result := domain.NewBatchResult()
	result.AddSuccess(domain.ItemOutcome{TransactionID: 1, Status: domain.StatusCoded, AccountCode: "461"})
	suite.coding.On("ApplyCoding", mock.Anything, int64(7)).Return(result, nil).Once()

	w := suite.do(http.MethodPost, companyPath+"/transactions/coding", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal("Coded 1 transactions", body["message"])
	suite.Len(body["success"], 1)
	suite.Len(body["errors"], 0)
}

func (suite *HandlerTestSuite) TestPushTransactions_AllCoded() {
	result := domain.NewBatchResult()
	suite.ledger.On("PushTransactions", mock.Anything, int64(7), []int64(nil)).Return(result, nil).Once()
	w := suite.do(http.MethodPost, companyPath+"/transactions/push", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestPushTransactions_Selected_NeedsReconnect() {
	err := errors.Join(apperrors.ErrNeedsReconnect, errors.New("invalid_grant"))
	suite.ledger.On("PushTransactions", mock.Anything, int64(7), []int64{4, 5}).Return(domain.BatchResult{}, err).Once()

	w := suite.do(http.MethodPost, companyPath+"/transactions/push", dto.PushTransactionsRequest{TransactionIDs: []int64{4, 5}})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(true, suite.decode(w)["needsReconnect"])
}

// --- Xero ledger ---

func (suite *HandlerTestSuite) TestListCodingAccounts_UpstreamError() {
	suite.ledger.On("ListCodingAccounts", mock.Anything, int64(7)).
		Return(nil, &apperrors.ExternalAPIError{Service: "xero", Status: http.StatusTooManyRequests, Message: "rate limit"}).Once()
	w := suite.do(http.MethodGet, companyPath+"/xero/accounts", nil)
	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.Equal("rate limit", suite.decode(w)["error"])
}

func (suite *HandlerTestSuite) TestListBankTransactions_Query() {
	list := domain.NewBankTransactionList(nil, domain.BankTransactionQuery{IncludeAll: true}, domain.SixMonthsBefore(fixedNow))
	suite.ledger.On("ListBankTransactions", mock.Anything, int64(7), domain.BankTransactionQuery{BankAccountID: "acc-1", IncludeAll: true}).Return(list, nil).Once()

	w := suite.do(http.MethodGet, companyPath+"/xero/bank-transactions?bankAccountId=acc-1&includeAll=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal(true, body["includeAll"])
	suite.Equal("2024-09-15", body["dateFilter"])
}

func (suite *HandlerTestSuite) TestReconcileAndBankSummary() {
	suite.ledger.On("ReconcileTransaction", mock.Anything, int64(7), "bt-1").Return(nil).Once()
	w := suite.do(http.MethodPost, companyPath+"/xero/bank-transactions/bt-1/reconcile", nil)
	suite.Equal(http.StatusOK, w.Code)

	raw := json.RawMessage(`{"Reports":[{"ReportName":"Bank Summary"}]}`)
	suite.ledger.On("BankSummary", mock.Anything, int64(7)).Return(raw, nil).Once()
	w = suite.do(http.MethodGet, companyPath+"/xero/reports/bank-summary", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(string(raw), w.Body.String())
}

func (suite *HandlerTestSuite) TestSuggestMatch_Disabled() {
	suite.advisor.On("SuggestMatch", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ReconcileSuggestion{}, apperrors.ErrAdvisorDisabled).Once()

	req := map[string]any{
		"bankLine":         map[string]any{"date": "2025-03-01", "description": "ACME", "amount": -12.5},
		"xeroTransactions": []map[string]any{{"transactionId": "bt-1"}},
	}
	w := suite.do(http.MethodPost, companyPath+"/reconcile/suggestions", req)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlerTestSuite) TestSuggestMatch_Success() {
	idx := 0
	suite.advisor.On("SuggestMatch", mock.Anything, mock.MatchedBy(func(l domain.StatementLinePrompt) bool {
		return l.Description == "ACME" && l.Amount.Equal(decimal.RequireFromString("-12.5"))
	}), mock.MatchedBy(func(c []domain.BankTransaction) bool {
		return len(c) == 1 && c[0].BankTransactionID == "bt-1"
	})).Return(domain.ReconcileSuggestion{BestMatchIndex: &idx, Confidence: domain.ConfidenceHigh}, nil).Once()

	req := map[string]any{
		"bankLine":         map[string]any{"date": "2025-03-01", "description": "ACME", "amount": -12.5},
		"xeroTransactions": []map[string]any{{"transactionId": "bt-1"}},
	}
	w := suite.do(http.MethodPost, companyPath+"/reconcile/suggestions", req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("high", suite.decode(w)["confidence"])
}

func (suite *HandlerTestSuite) TestSuggestMatch_NoCandidates() {
	req := map[string]any{
		"bankLine":         map[string]any{"date": "2025-03-01", "description": "ACME", "amount": 1},
		"xeroTransactions": []map[string]any{},
	}
	w := suite.do(http.MethodPost, companyPath+"/reconcile/suggestions", req)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// --- Payroll ---

func (suite *HandlerTestSuite) TestPreparePayRun() {
	result := domain.PayRunResult{PayRunCreated: true, Message: "Pay run created", MarkedStaged: 1}
	suite.payroll.On("PreparePayRun", mock.Anything, int64(7), mock.MatchedBy(func(r domain.PayRunRequest) bool {
		return r.EmployeeID == "emp-1" && r.Create && r.NetPay.Equal(decimal.NewFromInt(1000)) &&
			r.PayPeriodEndDate != nil && r.PayPeriodEndDate.Format(domain.DateLayout) == "2025-03-14"
	})).Return(result, nil).Once()

	w := suite.do(http.MethodPost, companyPath+"/payroll/payruns", map[string]any{
		"employeeId":       "emp-1",
		"netPay":           1000,
		"payPeriodEndDate": "2025-03-14",
		"createPayrun":     true,
		"transactionIds":   []int64{3},
	})

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(true, suite.decode(w)["payrunCreated"])
	suite.payroll.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestPreparePayRun_BadDate() {
	w := suite.do(http.MethodPost, companyPath+"/payroll/payruns", map[string]any{"employeeId": "emp-1", "payPeriodEndDate": "14/03/2025"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.payroll.AssertNotCalled(suite.T(), "PreparePayRun")
}

func (suite *HandlerTestSuite) TestPayrollSetup_PassesEmployee() {
	suite.payroll.On("PayrollSetup", mock.Anything, int64(7), "emp-2").Return(domain.PayrollSetup{PayrollCalendars: []domain.PayrollCalendar{}}, nil).Once()
	w := suite.do(http.MethodGet, companyPath+"/payroll/setup?employeeId=emp-2", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.payroll.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestListEmployees_NoTenant() {
	suite.payroll.On("ListEmployees", mock.Anything, int64(7)).Return(nil, apperrors.ErrNoTenant).Once()
	w := suite.do(http.MethodGet, companyPath+"/payroll/employees", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(true, suite.decode(w)["needsReconnect"])
}

// --- Rate limiting ---

func (suite *HandlerTestSuite) TestRateLimit() {
	l, err := middleware.NewLimiter("2-M", nil)
	suite.Require().NoError(err)
	suite.router = suite.newRouter(l)

	suite.imports.On("ListTransactions", mock.Anything, int64(7), mock.Anything).Return([]domain.StagedTransaction{}, "", nil)

	for i := 0; i < 2; i++ {
		w := suite.do(http.MethodGet, companyPath+"/transactions", nil)
		suite.Equal(http.StatusOK, w.Code)
	}
	w := suite.do(http.MethodGet, companyPath+"/transactions", nil)
	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.Equal("0", w.Header().Get("X-RateLimit-Remaining"))

	// Other companies have their own budget
	suite.credential.On("GetCredential", mock.Anything, int64(8)).Return(nil, apperrors.ErrNotFound).Once()
	w = suite.do(http.MethodGet, strings.Replace(companyPath, "/7", "/8", 1)+"/credentials", nil)
	suite.NotEqual(http.StatusTooManyRequests, w.Code)
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
