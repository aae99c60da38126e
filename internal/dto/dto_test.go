package dto

import (
	"testing"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, registerOn(v))
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newTestValidator(t)

	assert.NoError(t, v.Struct(ListTransactionsQuery{Status: "coded", Filter: "wage", Limit: 10}))
	assert.NoError(t, v.Struct(ListTransactionsQuery{}))
	assert.Error(t, v.Struct(ListTransactionsQuery{Status: "archived"}))
	assert.Error(t, v.Struct(ListTransactionsQuery{Filter: "salary"}))
	assert.Error(t, v.Struct(ListTransactionsQuery{Limit: 501}))

	assert.NoError(t, v.Struct(PayRunRequest{EmployeeID: "e", PayPeriodEndDate: "2025-03-14"}))
	assert.Error(t, v.Struct(PayRunRequest{EmployeeID: "e", PayPeriodEndDate: "14/03/2025"}))

	bad := "paid"
	assert.Error(t, v.Struct(UpdateTransactionRequest{Status: &bad}))
}

func TestListTransactionsQuery_ToDomain(t *testing.T) {
	f := ListTransactionsQuery{Status: "pending", Filter: "wage", Limit: 5, PageToken: "tok"}.ToDomain()

	require.NotNil(t, f.Status)
	assert.Equal(t, domain.StatusPending, *f.Status)
	assert.True(t, f.WageOnly)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, "tok", f.PageToken)

	assert.Nil(t, ListTransactionsQuery{}.ToDomain().Status)
}

func TestToCredentialResponse_MasksSecrets(t *testing.T) {
	access, tenant := "tok", "t-1"
	resp := ToCredentialResponse(&domain.OAuthCredential{
		CompanyID:    7,
		ClientID:     "client",
		ClientSecret: "secret",
		AccessToken:  &access,
		RefreshToken: &access,
		TenantID:     &tenant,
	})

	assert.True(t, resp.HasClientSecret)
	assert.True(t, resp.Connected)
	assert.Equal(t, domain.CredentialAuthorized, resp.State)
	assert.Equal(t, "t-1", resp.TenantID)
}

func TestPayRunRequest_ToDomain(t *testing.T) {
	req := PayRunRequest{EmployeeID: "e", PayPeriodEndDate: "2025-03-14", CreatePayRun: true, TransactionIDs: []int64{1}}.ToDomain()

	require.NotNil(t, req.PayPeriodEndDate)
	assert.Equal(t, "2025-03-14", req.PayPeriodEndDate.Format(domain.DateLayout))
	assert.True(t, req.Create)
	assert.Equal(t, []int64{1}, req.StagedTransactionIDs)
}
