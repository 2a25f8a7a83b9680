package atm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

// ErrSchemaMissing is returned when the atm schema has not been applied to
// the database (see db/schema.sql).
var ErrSchemaMissing = fmt.Errorf("atm schema missing")

// Repository supplies the accounts a Controller is built from. It is read
// once at startup; balances are never written back.
type Repository struct {
	accounts []models.Account
	db       *sql.DB
}

// NewRepository constructs a memory-backed repository.
func NewRepository(accounts ...models.Account) *Repository {
	out := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Clone())
	}
	return &Repository{accounts: out}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadAccounts returns all accounts with their cards. The db backend orders
// accounts by number and cards by position.
func (r *Repository) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	if r.db == nil {
		out := make([]models.Account, 0, len(r.accounts))
		for _, a := range r.accounts {
			out = append(out, a.Clone())
		}
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT a.account_number, a.balance, c.card_id, c.pin
          FROM atm.accounts a
          LEFT JOIN atm.cards c ON c.account_number = a.account_number
         ORDER BY a.account_number, c.position
    `)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("loading accounts: %w", ErrSchemaMissing)
		}
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var number string
		var balance int64
		var cardID, pin sql.NullString
		if err := rows.Scan(&number, &balance, &cardID, &pin); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Number != number {
			out = append(out, models.Account{Number: number, Balance: balance})
		}
		if cardID.Valid {
			last := &out[len(out)-1]
			last.Cards = append(last.Cards, models.Card{ID: cardID.String, PIN: pin.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return out, nil
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func isUndefinedTable(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "42P01" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "42P01" {
		return true
	}
	return false
}
