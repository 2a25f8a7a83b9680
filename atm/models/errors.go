package models

import "errors"

var (
	ErrCardAlreadyInserted = errors.New("card is already in ATM")
	ErrNoCardInserted      = errors.New("no card in ATM")
	ErrUnknownCard         = errors.New("unknown card")
	ErrWrongPIN            = errors.New("wrong pin")
	ErrNegativeAmount      = errors.New("negative amount")
	ErrInsufficientFunds   = errors.New("not enough balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// Construction errors.
var (
	ErrDuplicateAccount = errors.New("duplicate account number")
	ErrDuplicateCard    = errors.New("duplicate card id")
	ErrNegativeBalance  = errors.New("negative opening balance")
)
