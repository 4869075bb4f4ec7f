package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is a single income or expense entry.
type Action struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	Value          decimal.Decimal `json:"value"`
	Type           EntryType       `json:"type"`
	CategoryID     string          `json:"categoryId"`
	Description    string          `json:"description,omitempty"`
	TrackOnly      bool            `json:"trackOnly,omitempty"`
	WithCreditCard bool            `json:"withCreditCard,omitempty"`
}
