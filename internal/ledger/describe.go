package ledger

import (
	"fmt"
	"strings"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// Describe builds the display title and description of a pending entity
// using the categories of the current snapshot. Tags and actions must
// reference categories that already exist, and an action must match the
// type of its category.
func Describe(doc models.Document, entity any) (string, string, error) {
	switch e := entity.(type) {
	case models.Category:
		return e.Name, fmt.Sprintf("New %s category", e.Type), nil

	case models.Tag:
		names := make([]string, 0, len(e.CategoryIDs))
		for _, id := range e.CategoryIDs {
			c, ok := doc.FindCategory(id)
			if !ok {
				return "", "", newValidationError("tag", fmt.Sprintf("unknown category %q", id))
			}
			names = append(names, c.Name)
		}
		if len(names) == 0 {
			return e.Name, "No categories", nil
		}
		return e.Name, strings.Join(names, ", "), nil

	case models.Action:
		c, ok := doc.FindCategory(e.CategoryID)
		if !ok {
			return "", "", newValidationError("action", fmt.Sprintf("unknown category %q", e.CategoryID))
		}
		if c.Type != e.Type {
			return "", "", newValidationError("action", fmt.Sprintf("type %q does not match category type %q", e.Type, c.Type))
		}
		return c.Name, fmt.Sprintf("%s %s on %s", e.Type, e.Value.StringFixed(2), e.Date.Format("2006-01-02")), nil
	}

	return "", "", newValidationError("entity", fmt.Sprintf("unsupported entity %T", entity))
}
