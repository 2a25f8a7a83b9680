package atm_test

import (
	"io"
	"testing"

	"github.com/alovak/atm-playground/atm"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T) *atm.Service {
	t.Helper()
	ctrl, err := atm.NewController(referenceAccounts())
	require.NoError(t, err)
	return atm.NewService(ctrl, discardLogger())
}
