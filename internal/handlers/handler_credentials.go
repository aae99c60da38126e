package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/dto"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// credentialHandler handles the Xero app credentials and the connect flow.
type credentialHandler struct {
	credentialService portssvc.CredentialSvcFacade
	frontendBaseURL   string
}

func newCredentialHandler(cs portssvc.CredentialSvcFacade, frontendBaseURL string) *credentialHandler {
	return &credentialHandler{credentialService: cs, frontendBaseURL: frontendBaseURL}
}

// registerCredentialRoutes registers the company scoped credential and connect routes.
func registerCredentialRoutes(rg *gin.RouterGroup, credentialService portssvc.CredentialSvcFacade, frontendBaseURL string) {
	h := newCredentialHandler(credentialService, frontendBaseURL)

	credentials := rg.Group("/credentials")
	{
		credentials.POST("", h.saveCredentials)
		credentials.GET("", h.getCredentials)
		credentials.PATCH("", h.patchCredentials)
		credentials.DELETE("/tokens", h.disconnect)
	}

	xero := rg.Group("/xero")
	{
		xero.GET("/connect", h.connect)
		xero.POST("/connections", h.refreshConnections)
	}
}

// registerCallbackRoutes registers the OAuth redirect target. It is not company scoped:
// the company comes back inside the signed state.
func registerCallbackRoutes(rg *gin.RouterGroup, credentialService portssvc.CredentialSvcFacade, frontendBaseURL string) {
	h := newCredentialHandler(credentialService, frontendBaseURL)
	rg.GET("/xero/callback", h.callback)
}

// saveCredentials godoc
// @Summary Save Xero app credentials
// @Description Stores the client id and secret of the company's Xero app. Changing the client id drops any issued tokens.
// @Tags credentials
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   credentials body dto.SaveCredentialRequest true "Client credentials"
// @Success 200 {object} dto.CredentialResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to save credentials"
// @Router /companies/{companyID}/credentials [post]
func (h *credentialHandler) saveCredentials(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var req dto.SaveCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveCredentials", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cred, err := h.credentialService.SaveClientCredentials(c.Request.Context(), companyID, req.ClientID, req.ClientSecret, req.Scope)
	if err != nil {
		respondError(c, err, "Failed to save credentials")
		return
	}

	logger.Info("Xero credentials saved")
	c.JSON(http.StatusOK, dto.ToCredentialResponse(cred))
}

// getCredentials godoc
// @Summary Get Xero credentials
// @Description Returns the stored credential with secrets and tokens masked
// @Tags credentials
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {object} dto.CredentialResponse
// @Failure 404 {object} map[string]string "No credentials stored"
// @Failure 500 {object} map[string]string "Failed to retrieve credentials"
// @Router /companies/{companyID}/credentials [get]
func (h *credentialHandler) getCredentials(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	cred, err := h.credentialService.GetCredential(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to retrieve credentials")
		return
	}
	c.JSON(http.StatusOK, dto.ToCredentialResponse(cred))
}

// patchCredentials godoc
// @Summary Patch Xero credentials
// @Description Partially updates the stored credential. Omitted fields are left untouched.
// @Tags credentials
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   patch body dto.PatchCredentialRequest true "Fields to change"
// @Success 200 {object} dto.CredentialResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No credentials stored"
// @Failure 500 {object} map[string]string "Failed to update credentials"
// @Router /companies/{companyID}/credentials [patch]
func (h *credentialHandler) patchCredentials(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var req dto.PatchCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PatchCredentials", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cred, err := h.credentialService.PatchCredential(c.Request.Context(), companyID, req.ToDomain())
	if err != nil {
		respondError(c, err, "Failed to update credentials")
		return
	}
	c.JSON(http.StatusOK, dto.ToCredentialResponse(cred))
}

// disconnect godoc
// @Summary Disconnect from Xero
// @Description Clears the access and refresh tokens and tenant. Client credentials are kept.
// @Tags credentials
// @Param   companyID path int true "Company ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "No credentials stored"
// @Failure 500 {object} map[string]string "Failed to disconnect"
// @Router /companies/{companyID}/credentials/tokens [delete]
func (h *credentialHandler) disconnect(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	if err := h.credentialService.Disconnect(c.Request.Context(), companyID); err != nil {
		respondError(c, err, "Failed to disconnect")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Xero tokens cleared")
	c.Status(http.StatusNoContent)
}

// connect godoc
// @Summary Start the Xero connect flow
// @Description Returns the Xero authorize URL carrying a signed state for this company
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {object} dto.ConnectURLResponse
// @Failure 401 {object} map[string]interface{} "Credentials not configured"
// @Failure 500 {object} map[string]string "Failed to build authorize URL"
// @Router /companies/{companyID}/xero/connect [get]
func (h *credentialHandler) connect(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	authURL, err := h.credentialService.ConnectURL(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to build authorize URL")
		return
	}
	c.JSON(http.StatusOK, dto.ConnectURLResponse{AuthURL: authURL})
}

// refreshConnections godoc
// @Summary Refresh the connected organisation
// @Description Re-reads the Xero organisations the token can access and stores the first one
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {object} domain.Tenant
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 404 {object} map[string]string "No organisations connected"
// @Router /companies/{companyID}/xero/connections [post]
func (h *credentialHandler) refreshConnections(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	tenant, err := h.credentialService.RefreshConnections(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to refresh connections")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// callback godoc
// @Summary Xero OAuth callback
// @Description Exchanges the authorization code and redirects the browser back to the frontend
// @Tags xero
// @Param   code query string false "Authorization code"
// @Param   state query string false "Signed state"
// @Param   error query string false "Error returned by Xero"
// @Success 302 "Redirect to the frontend"
// @Router /xero/callback [get]
func (h *credentialHandler) callback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if xeroErr := c.Query("error"); xeroErr != "" {
		logger.Warn("Xero returned an authorization error", slog.String("error", xeroErr))
		h.redirectFrontend(c, url.Values{"error": {xeroErr}})
		return
	}

	companyID, err := h.credentialService.CompleteAuthorization(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		logger.Error("Failed to complete Xero authorization", slog.String("error", err.Error()))
		h.redirectFrontend(c, url.Values{"error": {"authorization_failed"}})
		return
	}

	logger.Info("Xero connected", slog.Int64("company_id", companyID))
	h.redirectFrontend(c, url.Values{
		"success":   {"connected"},
		"companyId": {strconv.FormatInt(companyID, 10)},
	})
}

func (h *credentialHandler) redirectFrontend(c *gin.Context, q url.Values) {
	c.Redirect(http.StatusFound, h.frontendBaseURL+"/xero?"+q.Encode())
}
