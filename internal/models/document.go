package models

import "time"

// Document is the whole ledger as stored remotely. It is always read and
// written in full.
type Document struct {
	UpdatedAt  time.Time  `json:"updatedAt"`
	Tags       []Tag      `json:"tags"`
	Categories []Category `json:"categories"`
	Actions    []Action   `json:"actions"`
}

// NewDocument returns an empty ledger stamped with at.
func NewDocument(at time.Time) Document {
	return Document{
		UpdatedAt:  at,
		Tags:       []Tag{},
		Categories: []Category{},
		Actions:    []Action{},
	}
}

// FindCategory returns the category with the given id.
func (d Document) FindCategory(id string) (Category, bool) {
	for _, c := range d.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
