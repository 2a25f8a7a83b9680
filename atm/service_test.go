package atm_test

import (
	"testing"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/stretchr/testify/require"
)

func TestService_Session(t *testing.T) {
	svc := newService(t)

	require.Equal(t, models.Status{}, svc.Status())

	sessionID, err := svc.InsertCard("12345678", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	status := svc.Status()
	require.True(t, status.CardInserted)
	require.Equal(t, "****5678", status.Card)
	require.Equal(t, sessionID, status.SessionID)

	balance, err := svc.Deposit(50)
	require.NoError(t, err)
	require.Equal(t, int64(150), balance)

	dispensed, balance, err := svc.Withdraw(30)
	require.NoError(t, err)
	require.Equal(t, int64(30), dispensed)
	require.Equal(t, int64(120), balance)

	balance, err = svc.Balance()
	require.NoError(t, err)
	require.Equal(t, int64(120), balance)

	require.NoError(t, svc.RemoveCard())
	require.Equal(t, models.Status{}, svc.Status())

	next, err := svc.InsertCard("12345678", "1234")
	require.NoError(t, err)
	require.NotEqual(t, sessionID, next)
}

func TestService_ErrorsWrapSentinels(t *testing.T) {
	svc := newService(t)

	_, err := svc.InsertCard("12345678", "0000")
	require.ErrorIs(t, err, models.ErrWrongPIN)

	_, err = svc.Balance()
	require.ErrorIs(t, err, models.ErrNoCardInserted)

	require.ErrorIs(t, svc.RemoveCard(), models.ErrNoCardInserted)

	_, err = svc.InsertCard("12345678", "1234")
	require.NoError(t, err)

	_, _, err = svc.Withdraw(101)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = svc.Deposit(-5)
	require.ErrorIs(t, err, models.ErrNegativeAmount)
}

func TestService_Transact(t *testing.T) {
	svc := newService(t)

	res, err := svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "1234",
		Operation: models.OperationBalance,
	})
	require.NoError(t, err)
	require.Equal(t, int64(100), res.Balance)
	require.NotEmpty(t, res.SessionID)
	require.False(t, svc.Status().CardInserted)

	res, err = svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "1234",
		Operation: models.OperationDeposit,
		Amount:    25,
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), res.Amount)
	require.Equal(t, int64(125), res.Balance)

	res, err = svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "1234",
		Operation: models.OperationWithdraw,
		Amount:    125,
	})
	require.NoError(t, err)
	require.Equal(t, int64(125), res.Amount)
	require.Equal(t, int64(0), res.Balance)
}

func TestService_TransactRemovesCardOnFailure(t *testing.T) {
	svc := newService(t)

	_, err := svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "1234",
		Operation: models.OperationWithdraw,
		Amount:    1000,
	})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)
	require.False(t, svc.Status().CardInserted)

	_, err = svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "nope",
		Operation: models.OperationBalance,
	})
	require.ErrorIs(t, err, models.ErrWrongPIN)
	require.False(t, svc.Status().CardInserted)
}

func TestService_TransactWhileCardInserted(t *testing.T) {
	svc := newService(t)

	_, err := svc.InsertCard("12345678", "1234")
	require.NoError(t, err)

	_, err = svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "1234",
		Operation: models.OperationBalance,
	})
	require.ErrorIs(t, err, models.ErrCardAlreadyInserted)

	// the interactive session is untouched
	require.True(t, svc.Status().CardInserted)
}

func TestService_TransactUnsupportedOperation(t *testing.T) {
	svc := newService(t)

	_, err := svc.Transact(models.TransactionRequest{
		CardID:    "12345678",
		PIN:       "1234",
		Operation: "transfer",
	})
	require.Error(t, err)
	require.False(t, svc.Status().CardInserted)
}
