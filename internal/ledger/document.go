package ledger

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/ledger-sync/internal/models"
)

// ParseDocument decodes and validates a raw ledger document.
func ParseDocument(raw []byte) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Document{}, newValidationError("document", err.Error())
	}
	doc = normalize(doc)

	if problems := validateDocument(doc); len(problems) > 0 {
		return models.Document{}, newValidationError("document", problems...)
	}
	return doc, nil
}

// Serialize encodes a document for a whole-document write.
func Serialize(doc models.Document) ([]byte, error) {
	data, err := json.Marshal(normalize(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// DecodeEntity decodes queued entity data for itemType and validates it.
// A non-empty id is rejected; ids are assigned at commit time.
func DecodeEntity(itemType models.ItemType, data json.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, newValidationError(string(itemType), "missing data")
	}

	var problems []string
	var entity any

	switch itemType {
	case models.ItemTypeCategories:
		var c models.Category
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, newValidationError("category", err.Error())
		}
		problems = validateCategory(c, "category", false)
		entity = c
	case models.ItemTypeTags:
		var t models.Tag
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, newValidationError("tag", err.Error())
		}
		if t.CategoryIDs == nil {
			t.CategoryIDs = []string{}
		}
		problems = validateTag(t, "tag", false)
		entity = t
	case models.ItemTypeActions:
		var a models.Action
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, newValidationError("action", err.Error())
		}
		problems = validateAction(a, "action", false)
		entity = a
	default:
		return nil, newValidationError("item type", fmt.Sprintf("unknown type %q", itemType))
	}

	if len(problems) > 0 {
		return nil, newValidationError(string(itemType), problems...)
	}
	return entity, nil
}

// ApplyAdd returns a copy of doc with the decoded entity prepended to the
// list named by itemType under a fresh id, and UpdatedAt set to at. doc is
// left untouched.
func ApplyAdd(doc models.Document, itemType models.ItemType, data json.RawMessage, at time.Time) (models.Document, error) {
	entity, err := DecodeEntity(itemType, data)
	if err != nil {
		return models.Document{}, err
	}

	out := models.Document{
		UpdatedAt:  at,
		Tags:       slices.Clone(doc.Tags),
		Categories: slices.Clone(doc.Categories),
		Actions:    slices.Clone(doc.Actions),
	}

	switch e := entity.(type) {
	case models.Category:
		e.ID = uuid.NewString()
		out.Categories = prepend(e, doc.Categories)
	case models.Tag:
		e.ID = uuid.NewString()
		out.Tags = prepend(e, doc.Tags)
	case models.Action:
		e.ID = uuid.NewString()
		out.Actions = prepend(e, doc.Actions)
	}

	return normalize(out), nil
}

func prepend[T any](v T, list []T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

func normalize(doc models.Document) models.Document {
	if doc.Tags == nil {
		doc.Tags = []models.Tag{}
	}
	if doc.Categories == nil {
		doc.Categories = []models.Category{}
	}
	if doc.Actions == nil {
		doc.Actions = []models.Action{}
	}
	return doc
}
