package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/dto"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"github.com/gin-gonic/gin"
)

type payrollHandler struct {
	payrollService portssvc.PayrollSvcFacade
	posthog        *utils.PosthogClientWrapper
}

func newPayrollHandler(ps portssvc.PayrollSvcFacade, ph *utils.PosthogClientWrapper) *payrollHandler {
	return &payrollHandler{payrollService: ps, posthog: ph}
}

// registerPayrollRoutes registers the Xero payroll routes.
func registerPayrollRoutes(rg *gin.RouterGroup, payrollService portssvc.PayrollSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := newPayrollHandler(payrollService, posthog)

	payroll := rg.Group("/payroll")
	{
		payroll.GET("/employees", h.listEmployees)
		payroll.GET("/setup", h.payrollSetup)
		payroll.POST("/payruns", h.preparePayRun)
	}
}

// listEmployees godoc
// @Summary List payroll employees
// @Tags payroll
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {array} domain.Employee
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/payroll/employees [get]
func (h *payrollHandler) listEmployees(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	employees, err := h.payrollService.ListEmployees(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, employees)
}

// payrollSetup godoc
// @Summary Payroll calendars and pay template
// @Description Returns the pay calendars and, when employeeId is given, that employee's pay template
// @Tags payroll
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   employeeId query string false "Xero employee ID"
// @Success 200 {object} domain.PayrollSetup
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/payroll/setup [get]
func (h *payrollHandler) payrollSetup(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	setup, err := h.payrollService.PayrollSetup(c.Request.Context(), companyID, c.Query("employeeId"))
	if err != nil {
		respondError(c, err, "Failed to load payroll setup")
		return
	}
	c.JSON(http.StatusOK, setup)
}

// preparePayRun godoc
// @Summary Estimate or create a pay run
// @Description Grosses up a target net pay. With createPayrun set, also creates the draft pay run in Xero.
// @Tags payroll
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   request body dto.PayRunRequest true "Pay run request"
// @Success 200 {object} domain.PayRunResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/payroll/payruns [post]
func (h *payrollHandler) preparePayRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var req dto.PayRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PreparePayRun", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.payrollService.PreparePayRun(c.Request.Context(), companyID, req.ToDomain())
	if err != nil {
		respondError(c, err, "Failed to prepare pay run")
		return
	}

	if result.PayRunCreated {
		middleware.PosthogEvent(c, h.posthog, "payrun_created", map[string]any{
			"marked_transactions": result.MarkedStaged,
		})
	}
	c.JSON(http.StatusOK, result)
}
