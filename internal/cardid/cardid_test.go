package cardid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"12", "**"},
		{"1234", "****"},
		{"12345678", "****5678"},
		{"4212 3456 7890 1234", "************1234"},
	}
	for _, c := range cases {
		require.Equal(t, c.out, Mask(c.in), "Mask(%q)", c.in)
	}
}

func TestValidateWire(t *testing.T) {
	require.NoError(t, ValidateWire("12345678"))
	require.NoError(t, ValidateWire("1234567890123456789"))

	require.Error(t, ValidateWire(""))
	require.Error(t, ValidateWire("1234abcd"))
	require.Error(t, ValidateWire("12345678901234567890"))
}

func TestLastN(t *testing.T) {
	require.Equal(t, "5678", LastN("12345678", 4))
	require.Equal(t, "12", LastN("12", 4))
}
