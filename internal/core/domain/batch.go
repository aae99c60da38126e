package domain

// ItemOutcome is the result of processing one staged row within a bulk operation.
type ItemOutcome struct {
	TransactionID int64             `json:"transactionId"`
	Status        TransactionStatus `json:"status,omitempty"`
	AccountCode   string            `json:"accountCode,omitempty"`
	XeroID        string            `json:"xeroId,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// BatchResult collects per-item outcomes. A failed item never aborts the batch.
type BatchResult struct {
	Succeeded []ItemOutcome `json:"success"`
	Failed    []ItemOutcome `json:"errors"`
	// Unchanged counts items that were evaluated but needed no update.
	Unchanged int `json:"unchanged"`
}

// NewBatchResult returns an empty result with non-nil slices so it renders as [] not null.
func NewBatchResult() BatchResult {
	return BatchResult{Succeeded: []ItemOutcome{}, Failed: []ItemOutcome{}}
}

func (b *BatchResult) AddSuccess(o ItemOutcome) {
	b.Succeeded = append(b.Succeeded, o)
}

func (b *BatchResult) AddFailure(id int64, err error) {
	b.Failed = append(b.Failed, ItemOutcome{TransactionID: id, Error: err.Error()})
}

// Total is the number of items that produced an outcome.
func (b BatchResult) Total() int {
	return len(b.Succeeded) + len(b.Failed) + b.Unchanged
}
