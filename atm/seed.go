package atm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alovak/atm-playground/atm/models"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML document the file backend reads:
//
//	accounts:
//	  - number: "0"
//	    balance: 100
//	    cards:
//	      - id: "12345678"
//	        pin: "1234"
type Seed struct {
	Accounts []models.Account `yaml:"accounts"`
}

// ParseSeed decodes a seed document. Unknown keys are rejected so that a
// misspelled field does not silently produce an empty PIN or balance.
func ParseSeed(r io.Reader) ([]models.Account, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	return seed.Accounts, nil
}

func LoadSeedFile(path string) ([]models.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	accounts, err := ParseSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return accounts, nil
}
