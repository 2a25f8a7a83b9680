package models

// Account holds a balance in minor currency units and the cards that can
// operate on it.
type Account struct {
	Number  string `json:"number" yaml:"number"`
	Balance int64  `json:"balance" yaml:"balance"`
	Cards   []Card `json:"cards,omitempty" yaml:"cards"`
}

// Clone returns a copy of the account that does not share the Cards slice.
func (a Account) Clone() Account {
	cp := a
	if a.Cards != nil {
		cp.Cards = make([]Card, len(a.Cards))
		copy(cp.Cards, a.Cards)
	}
	return cp
}
