package models

// Card is a card token linked to exactly one account.
// PIN is compared by exact match and is never serialized to JSON.
type Card struct {
	ID  string `json:"id" yaml:"id"`
	PIN string `json:"-" yaml:"pin"`
}
