package atm_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alovak/atm-playground/atm"
	"github.com/alovak/atm-playground/atm/models"
	"github.com/stretchr/testify/require"
)

func TestRepository_Memory(t *testing.T) {
	seed := referenceAccounts()
	repo := atm.NewRepository(seed...)

	seed[0].Balance = 0

	accounts, err := repo.LoadAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, int64(100), accounts[0].Balance)

	accounts[0].Cards[0].PIN = "changed"
	again, err := repo.LoadAccounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1234", again[0].Cards[0].PIN)

	require.NoError(t, repo.Ping(context.Background()))
}

func TestParseSeed(t *testing.T) {
	doc := `
accounts:
  - number: "0"
    balance: 100
    cards:
      - id: "12345678"
        pin: "1234"
  - number: "1"
    balance: 0
`
	accounts, err := atm.ParseSeed(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []models.Account{
		{Number: "0", Balance: 100, Cards: []models.Card{{ID: "12345678", PIN: "1234"}}},
		{Number: "1", Balance: 0},
	}, accounts)
}

func TestParseSeed_UnknownField(t *testing.T) {
	doc := `
accounts:
  - number: "0"
    balnce: 100
`
	_, err := atm.ParseSeed(strings.NewReader(doc))
	require.Error(t, err)
}

func TestParseSeed_Empty(t *testing.T) {
	accounts, err := atm.ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  - number: \"7\"\n    balance: 5\n"), 0o600))

	accounts, err := atm.LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "7", accounts[0].Number)

	_, err = atm.LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
