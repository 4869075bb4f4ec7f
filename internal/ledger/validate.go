package ledger

import (
	"fmt"
	"strings"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/shopspring/decimal"
)

func validateCategory(c models.Category, path string, requireID bool) []string {
	problems := validateID(c.ID, path, requireID)
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, path+": missing name")
	}
	if !c.Type.Valid() {
		problems = append(problems, fmt.Sprintf("%s: unknown type %q", path, c.Type))
	}
	problems = append(problems, validateExpected(c.ExpectedPerMonth, path)...)
	return problems
}

func validateTag(t models.Tag, path string, requireID bool) []string {
	problems := validateID(t.ID, path, requireID)
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, path+": missing name")
	}
	if !t.Type.Valid() {
		problems = append(problems, fmt.Sprintf("%s: unknown type %q", path, t.Type))
	}
	for i, id := range t.CategoryIDs {
		if id == "" {
			problems = append(problems, fmt.Sprintf("%s.categoryIds[%d]: empty category id", path, i))
		}
	}
	problems = append(problems, validateExpected(t.ExpectedPerMonth, path)...)
	return problems
}

func validateAction(a models.Action, path string, requireID bool) []string {
	problems := validateID(a.ID, path, requireID)
	if a.Date.IsZero() {
		problems = append(problems, path+": missing date")
	}
	if a.Value.IsNegative() {
		problems = append(problems, fmt.Sprintf("%s: value %s is negative", path, a.Value.String()))
	}
	if !a.Type.Valid() {
		problems = append(problems, fmt.Sprintf("%s: unknown type %q", path, a.Type))
	}
	if a.CategoryID == "" {
		problems = append(problems, path+": missing categoryId")
	}
	return problems
}

// validateID checks that stored entities have an id and new ones do not;
// new entities get theirs at commit time.
func validateID(id, path string, requireID bool) []string {
	if requireID && id == "" {
		return []string{path + ": missing id"}
	}
	if !requireID && id != "" {
		return []string{fmt.Sprintf("%s: id %q must not be set, it is assigned on commit", path, id)}
	}
	return nil
}

func validateExpected(v *decimal.Decimal, path string) []string {
	if v != nil && v.IsNegative() {
		return []string{fmt.Sprintf("%s: expectedPerMonth %s is negative", path, v.String())}
	}
	return nil
}

// validateDocument checks every entity and that ids are unique per list.
// References between lists are not enforced here; the remote document is
// accepted as long as each entry is well formed.
func validateDocument(doc models.Document) []string {
	var problems []string

	seen := make(map[string]bool)
	for i, c := range doc.Categories {
		path := fmt.Sprintf("categories[%d]", i)
		problems = append(problems, validateCategory(c, path, true)...)
		problems = append(problems, checkDuplicate(seen, c.ID, path)...)
	}

	seen = make(map[string]bool)
	for i, t := range doc.Tags {
		path := fmt.Sprintf("tags[%d]", i)
		problems = append(problems, validateTag(t, path, true)...)
		problems = append(problems, checkDuplicate(seen, t.ID, path)...)
	}

	seen = make(map[string]bool)
	for i, a := range doc.Actions {
		path := fmt.Sprintf("actions[%d]", i)
		problems = append(problems, validateAction(a, path, true)...)
		problems = append(problems, checkDuplicate(seen, a.ID, path)...)
	}

	return problems
}

func checkDuplicate(seen map[string]bool, id, path string) []string {
	if id == "" {
		return nil
	}
	if seen[id] {
		return []string{fmt.Sprintf("%s: duplicate id %q", path, id)}
	}
	seen[id] = true
	return nil
}

// ValidateQueueItem checks an item read back from the persisted queue.
func ValidateQueueItem(item models.QueueItem) error {
	var problems []string
	if !item.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown type %q", item.Type))
	}
	switch item.Status {
	case models.ItemStatusReady, models.ItemStatusProcessing, models.ItemStatusError:
	default:
		problems = append(problems, fmt.Sprintf("unknown status %q", item.Status))
	}
	if item.APIAction != models.APIActionAdd {
		problems = append(problems, fmt.Sprintf("unsupported apiAction %q", item.APIAction))
	}
	if len(problems) > 0 {
		return newValidationError("queue item", problems...)
	}
	if _, err := DecodeEntity(item.Type, item.Data); err != nil {
		return err
	}
	return nil
}
