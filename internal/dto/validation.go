package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request DTOs
// to gin's validator engine:
//
//	isodate   - a YYYY-MM-DD calendar date
//	txnstatus - a known staged transaction status
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		return err
	}
	return v.RegisterValidation("txnstatus", validateTxnStatus)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}

func validateTxnStatus(fl validator.FieldLevel) bool {
	return domain.TransactionStatus(fl.Field().String()).Valid()
}
