package models

import (
	"github.com/shopspring/decimal"
)

// EntryType tells whether a category, tag or action counts as spending or earning.
type EntryType string

const (
	EntryTypeExpense EntryType = "expense"
	EntryTypeIncome  EntryType = "income"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == EntryTypeExpense || t == EntryTypeIncome
}

// Category groups actions of a single entry type.
type Category struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	SortPriority     int              `json:"sortPriority"`
	Type             EntryType        `json:"type"`
	Description      string           `json:"description,omitempty"`
	ExpectedPerMonth *decimal.Decimal `json:"expectedPerMonth,omitempty"`
}

// Tag is a label that can be attached to several categories.
type Tag struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	SortPriority     int              `json:"sortPriority"`
	Type             EntryType        `json:"type"`
	Description      string           `json:"description,omitempty"`
	ExpectedPerMonth *decimal.Decimal `json:"expectedPerMonth,omitempty"`
	CategoryIDs      []string         `json:"categoryIds"`
}
