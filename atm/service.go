package atm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/alovak/atm-playground/internal/cardid"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Service is what the front ends talk to. It serializes calls so that a
// one-shot Transact cannot interleave with an interactive session, and it
// logs every state change.
type Service struct {
	mu        sync.Mutex
	ctrl      *Controller
	logger    *slog.Logger
	sessionID string
}

func NewService(ctrl *Controller, logger *slog.Logger) *Service {
	return &Service{
		ctrl:   ctrl,
		logger: logger.With(slog.String("component", "service")),
	}
}

// InsertCard starts a session and returns its id.
func (s *Service) InsertCard(cardID, pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(cardID, pin)
}

func (s *Service) RemoveCard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove()
}

func (s *Service) Balance() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.ctrl.Balance()
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

// Deposit credits the session account and returns the new balance.
func (s *Service) Deposit(amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deposit(amount)
}

// Withdraw debits the session account and returns the dispensed amount and
// the balance left.
func (s *Service) Withdraw(amount int64) (dispensed, balance int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withdraw(amount)
}

func (s *Service) Status() models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ctrl.Session()
	if !ok {
		return models.Status{}
	}
	return models.Status{
		CardInserted: true,
		Card:         cardid.Mask(id),
		SessionID:    s.sessionID,
	}
}

// Transact runs a card-present transaction: insert, one operation, remove.
// The card is removed even when the operation fails.
func (s *Service) Transact(req models.TransactionRequest) (models.TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Operation {
	case models.OperationBalance, models.OperationDeposit, models.OperationWithdraw:
	default:
		return models.TransactionResult{}, fmt.Errorf("unsupported operation %q", req.Operation)
	}

	sessionID, err := s.insert(req.CardID, req.PIN)
	if err != nil {
		return models.TransactionResult{}, err
	}
	result := models.TransactionResult{SessionID: sessionID}

	err = func() error {
		switch req.Operation {
		case models.OperationDeposit:
			balance, err := s.deposit(req.Amount)
			if err != nil {
				return err
			}
			result.Amount = req.Amount
			result.Balance = balance
			return nil
		case models.OperationWithdraw:
			dispensed, balance, err := s.withdraw(req.Amount)
			if err != nil {
				return err
			}
			result.Amount = dispensed
			result.Balance = balance
			return nil
		}
		balance, err := s.ctrl.Balance()
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		result.Balance = balance
		return nil
	}()

	if rerr := s.remove(); rerr != nil {
		err = errors.Join(err, rerr)
	}
	if err != nil {
		return models.TransactionResult{}, err
	}
	return result, nil
}

func (s *Service) insert(cardID, pin string) (string, error) {
	logger := s.logger.With(slog.String("card", cardid.Mask(cardID)))

	if err := s.ctrl.Insert(cardID, pin); err != nil {
		logger.Info("card rejected", slog.String("reason", err.Error()))
		return "", fmt.Errorf("inserting card: %w", err)
	}

	s.sessionID = uuid.New().String()
	logger.Info("card inserted", slog.String("session_id", s.sessionID))
	return s.sessionID, nil
}

func (s *Service) remove() error {
	if err := s.ctrl.Remove(); err != nil {
		return fmt.Errorf("removing card: %w", err)
	}
	s.logger.Info("card removed", slog.String("session_id", s.sessionID))
	s.sessionID = ""
	return nil
}

func (s *Service) deposit(amount int64) (int64, error) {
	if err := s.ctrl.Deposit(amount); err != nil {
		return 0, fmt.Errorf("deposit: %w", err)
	}
	balance, err := s.ctrl.Balance()
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	s.logger.Info("deposit accepted",
		slog.String("session_id", s.sessionID),
		slog.Int64("amount", amount),
	)
	return balance, nil
}

func (s *Service) withdraw(amount int64) (int64, int64, error) {
	dispensed, err := s.ctrl.Withdraw(amount)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			s.logger.Info("withdrawal declined",
				slog.String("session_id", s.sessionID),
				slog.Int64("amount", amount),
			)
		}
		return 0, 0, fmt.Errorf("withdraw: %w", err)
	}
	s.logger.Info("cash dispensed",
		slog.String("session_id", s.sessionID),
		slog.Int64("amount", dispensed),
	)
	balance, err := s.ctrl.Balance()
	if err != nil {
		return 0, 0, fmt.Errorf("balance: %w", err)
	}
	return dispensed, balance, nil
}
