package atm

import (
	"fmt"
	"math"
	"sync"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/alovak/atm-playground/internal/cardid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Controller is a single card reader in front of an in-memory ledger.
// At most one card is inserted at a time; balance, deposit and withdraw act
// on the account linked to that card.
//
// All methods are safe for concurrent use. Each call is one critical
// section, so a failed call never leaves partial state behind.
type Controller struct {
	mu sync.Mutex

	accounts    map[string]*models.Account
	cards       map[string]models.Card
	cardAccount map[string]string

	// inserted card id; valid only when hasCard is set
	inserted string
	hasCard  bool
}

// NewController indexes the given accounts and their cards. The controller
// keeps its own copies; later changes to accounts are not observed.
//
// Card ids must be unique across all accounts and opening balances must not
// be negative.
func NewController(accounts []models.Account) (*Controller, error) {
	c := &Controller{
		accounts:    make(map[string]*models.Account, len(accounts)),
		cards:       make(map[string]models.Card),
		cardAccount: make(map[string]string),
	}

	for _, account := range accounts {
		if _, ok := c.accounts[account.Number]; ok {
			return nil, fmt.Errorf("account %q: %w", account.Number, models.ErrDuplicateAccount)
		}
		if account.Balance < 0 {
			return nil, fmt.Errorf("account %q: %w", account.Number, models.ErrNegativeBalance)
		}
		acc := account.Clone()
		c.accounts[acc.Number] = &acc

		for _, card := range acc.Cards {
			if owner, ok := c.cardAccount[card.ID]; ok {
				return nil, fmt.Errorf("card linked to accounts %q and %q: %w", owner, acc.Number, models.ErrDuplicateCard)
			}
			c.cards[card.ID] = card
			c.cardAccount[card.ID] = acc.Number
		}
	}

	return c, nil
}

// Insert authenticates the card and starts a session. A second insert fails
// with models.ErrCardAlreadyInserted whatever the PIN.
func (c *Controller) Insert(cardID, pin string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasCard {
		return models.ErrCardAlreadyInserted
	}
	card, ok := c.cards[cardID]
	if !ok {
		return models.ErrUnknownCard
	}
	if card.PIN != pin {
		return models.ErrWrongPIN
	}

	c.inserted = cardID
	c.hasCard = true
	return nil
}

func (c *Controller) Remove() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasCard {
		return models.ErrNoCardInserted
	}
	c.inserted = ""
	c.hasCard = false
	return nil
}

func (c *Controller) Balance() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	account, err := c.sessionAccount()
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (c *Controller) Deposit(amount int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	account, err := c.sessionAccount()
	if err != nil {
		return err
	}
	if amount < 0 {
		return models.ErrNegativeAmount
	}
	if account.Balance > math.MaxInt64-amount {
		return models.ErrBalanceOverflow
	}
	account.Balance += amount
	return nil
}

// Withdraw debits amount and returns it, including when amount is zero.
func (c *Controller) Withdraw(amount int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	account, err := c.sessionAccount()
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, models.ErrNegativeAmount
	}
	if account.Balance-amount < 0 {
		return 0, models.ErrInsufficientFunds
	}
	account.Balance -= amount
	return amount, nil
}

// Session returns the inserted card id.
func (c *Controller) Session() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inserted, c.hasCard
}

// Accounts returns a copy of every account ordered by account number.
func (c *Controller) Accounts() []models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()

	numbers := maps.Keys(c.accounts)
	slices.Sort(numbers)

	out := make([]models.Account, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, c.accounts[n].Clone())
	}
	return out
}

// sessionAccount must be called with mu held.
func (c *Controller) sessionAccount() (*models.Account, error) {
	if !c.hasCard {
		return nil, models.ErrNoCardInserted
	}
	account, ok := c.accounts[c.cardAccount[c.inserted]]
	if !ok {
		// unreachable while the indexes are built by NewController
		return nil, fmt.Errorf("card %s has no account", cardid.Mask(c.inserted))
	}
	return account, nil
}
