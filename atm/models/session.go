package models

// Status describes the card reader as seen by front ends.
type Status struct {
	CardInserted bool   `json:"card_inserted"`
	Card         string `json:"card,omitempty"` // masked
	SessionID    string `json:"session_id,omitempty"`
}
