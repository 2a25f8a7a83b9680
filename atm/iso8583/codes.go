package iso8583

import (
	"errors"
	"fmt"

	"github.com/alovak/atm-playground/atm/models"
)

// Transaction type, the first two digits of the processing code. The
// remaining four (account types) are always zero.
const (
	procWithdraw = "01"
	procDeposit  = "21"
	procBalance  = "31"
)

const (
	CodeApproved          = "00"
	CodeBusy              = "05"
	CodeInvalidAmount     = "13"
	CodeUnknownCard       = "14"
	CodeFormatError       = "30"
	CodeInsufficientFunds = "51"
	CodeWrongPIN          = "55"
	CodeSystemError       = "96"
)

// ErrDeclined is returned by the client for response codes that have no
// matching domain error.
var ErrDeclined = errors.New("declined by host")

func operationFor(procCode string) (models.Operation, bool) {
	if len(procCode) != 6 {
		return "", false
	}
	switch procCode[:2] {
	case procBalance:
		return models.OperationBalance, true
	case procDeposit:
		return models.OperationDeposit, true
	case procWithdraw:
		return models.OperationWithdraw, true
	}
	return "", false
}

func procCodeFor(op models.Operation) (string, error) {
	switch op {
	case models.OperationBalance:
		return procBalance + "0000", nil
	case models.OperationDeposit:
		return procDeposit + "0000", nil
	case models.OperationWithdraw:
		return procWithdraw + "0000", nil
	}
	return "", fmt.Errorf("unsupported operation %q", op)
}

func responseCodeFor(err error) string {
	switch {
	case err == nil:
		return CodeApproved
	case errors.Is(err, models.ErrCardAlreadyInserted):
		return CodeBusy
	case errors.Is(err, models.ErrUnknownCard):
		return CodeUnknownCard
	case errors.Is(err, models.ErrWrongPIN):
		return CodeWrongPIN
	case errors.Is(err, models.ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, models.ErrNegativeAmount), errors.Is(err, models.ErrBalanceOverflow):
		return CodeInvalidAmount
	default:
		return CodeSystemError
	}
}

// errorFor is the client side of responseCodeFor.
func errorFor(code string) error {
	switch code {
	case CodeApproved:
		return nil
	case CodeBusy:
		return models.ErrCardAlreadyInserted
	case CodeUnknownCard:
		return models.ErrUnknownCard
	case CodeWrongPIN:
		return models.ErrWrongPIN
	case CodeInsufficientFunds:
		return models.ErrInsufficientFunds
	}
	return fmt.Errorf("response code %q: %w", code, ErrDeclined)
}
