package models

type Operation string

const (
	OperationBalance  Operation = "balance"
	OperationDeposit  Operation = "deposit"
	OperationWithdraw Operation = "withdraw"
)

// TransactionRequest is a card-present, one-shot transaction: the card is
// inserted, the operation runs and the card is removed again.
type TransactionRequest struct {
	CardID    string
	PIN       string
	Operation Operation
	Amount    int64
}

type TransactionResult struct {
	SessionID string
	// Amount is the dispensed amount for withdrawals and the accepted amount for deposits.
	Amount  int64
	Balance int64
}
