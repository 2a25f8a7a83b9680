package atm

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/go-chi/chi/v5"
)

// API is a HTTP API for the atm service
type API struct {
	atm *Service
}

func NewAPI(atm *Service) *API {
	return &API{
		atm: atm,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/card", func(r chi.Router) {
		r.Post("/", a.insertCard)
		r.Delete("/", a.removeCard)
	})
	r.Get("/session", a.getSession)
	r.Get("/balance", a.getBalance)
	r.Post("/deposit", a.deposit)
	r.Post("/withdraw", a.withdraw)
}

type InsertCardRequest struct {
	CardID string `json:"card_id"`
	PIN    string `json:"pin"`
}

type InsertCardResponse struct {
	SessionID string `json:"session_id"`
}

type AmountRequest struct {
	Amount *int64 `json:"amount"`
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type WithdrawResponse struct {
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (a *API) insertCard(w http.ResponseWriter, r *http.Request) {
	req := InsertCardRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sessionID, err := a.atm.InsertCard(req.CardID, req.PIN)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, InsertCardResponse{SessionID: sessionID})
}

func (a *API) removeCard(w http.ResponseWriter, r *http.Request) {
	if err := a.atm.RemoveCard(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.atm.Status())
}

func (a *API) getBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := a.atm.Balance()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

func (a *API) deposit(w http.ResponseWriter, r *http.Request) {
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	balance, err := a.atm.Deposit(amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

func (a *API) withdraw(w http.ResponseWriter, r *http.Request) {
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	dispensed, balance, err := a.atm.Withdraw(amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Amount: dispensed, Balance: balance})
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	req := AmountRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, errors.New("amount is required"))
		return 0, false
	}
	return *req.Amount, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrCardAlreadyInserted), errors.Is(err, models.ErrNoCardInserted):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, models.ErrWrongPIN):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds), errors.Is(err, models.ErrBalanceOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}
