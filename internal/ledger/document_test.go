package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() models.Document {
	expected := decimal.NewFromFloat(300)
	return models.Document{
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Categories: []models.Category{
			{ID: "cat-food", Name: "Food", SortPriority: 1, Type: models.EntryTypeExpense, ExpectedPerMonth: &expected},
			{ID: "cat-salary", Name: "Salary", SortPriority: 2, Type: models.EntryTypeIncome, Description: "Monthly pay"},
		},
		Tags: []models.Tag{
			{ID: "tag-home", Name: "Home", Type: models.EntryTypeExpense, CategoryIDs: []string{"cat-food"}},
		},
		Actions: []models.Action{
			{
				ID:             "act-1",
				Date:           time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
				Value:          decimal.RequireFromString("42.50"),
				Type:           models.EntryTypeExpense,
				CategoryID:     "cat-food",
				Description:    "Groceries",
				WithCreditCard: true,
			},
		},
	}
}

func TestParseDocument_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	raw, err := Serialize(doc)
	require.NoError(t, err)

	parsed, err := ParseDocument(raw)
	require.NoError(t, err)

	again, err := Serialize(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))

	assert.True(t, parsed.UpdatedAt.Equal(doc.UpdatedAt))
	require.Len(t, parsed.Actions, 1)
	assert.True(t, parsed.Actions[0].Value.Equal(doc.Actions[0].Value))
	assert.Equal(t, doc.Tags, parsed.Tags)
}

func TestParseDocument_MissingListsBecomeEmpty(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"updatedAt":"2024-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Categories)
	assert.NotNil(t, doc.Tags)
	assert.NotNil(t, doc.Actions)
	assert.Empty(t, doc.Actions)
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument([]byte(`{"actions": [`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestParseDocument_InvalidEntities(t *testing.T) {
	raw := `{
		"updatedAt": "2024-01-01T00:00:00Z",
		"categories": [
			{"id": "c1", "name": "Food", "sortPriority": 0, "type": "expense"},
			{"id": "c1", "name": "", "sortPriority": 1, "type": "transfer"}
		],
		"actions": [
			{"id": "a1", "date": "2024-01-02T00:00:00Z", "value": -3, "type": "expense", "categoryId": "c1"}
		]
	}`

	_, err := ParseDocument([]byte(raw))
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "duplicate id")
	assert.Contains(t, vErr.Error(), "missing name")
	assert.Contains(t, vErr.Error(), `unknown type "transfer"`)
	assert.Contains(t, vErr.Error(), "is negative")
}

func TestApplyAdd_PrependsWithFreshID(t *testing.T) {
	doc := sampleDocument()
	at := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	data := json.RawMessage(`{"date":"2024-03-02T00:00:00Z","value":12.3,"type":"expense","categoryId":"cat-food"}`)

	out, err := ApplyAdd(doc, models.ItemTypeActions, data, at)
	require.NoError(t, err)

	require.Len(t, out.Actions, 2)
	assert.NotEmpty(t, out.Actions[0].ID)
	assert.NotEqual(t, "act-1", out.Actions[0].ID)
	assert.True(t, out.Actions[0].Value.Equal(decimal.RequireFromString("12.3")))
	assert.Equal(t, "act-1", out.Actions[1].ID)
	assert.Equal(t, at, out.UpdatedAt)

	// input is untouched
	assert.Len(t, doc.Actions, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), doc.UpdatedAt)
}

func TestApplyAdd_CategoriesAndTags(t *testing.T) {
	doc := sampleDocument()
	at := time.Now().UTC()

	out, err := ApplyAdd(doc, models.ItemTypeCategories, json.RawMessage(`{"name":"Rent","sortPriority":3,"type":"expense"}`), at)
	require.NoError(t, err)
	require.Len(t, out.Categories, 3)
	assert.Equal(t, "Rent", out.Categories[0].Name)

	out, err = ApplyAdd(out, models.ItemTypeTags, json.RawMessage(`{"name":"Weekly","sortPriority":0,"type":"expense"}`), at)
	require.NoError(t, err)
	require.Len(t, out.Tags, 2)
	assert.Equal(t, "Weekly", out.Tags[0].Name)
	assert.NotNil(t, out.Tags[0].CategoryIDs)
}

func TestApplyAdd_RejectsInvalidData(t *testing.T) {
	_, err := ApplyAdd(sampleDocument(), models.ItemTypeActions, json.RawMessage(`{"value":1}`), time.Now())
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDecodeEntity_UnknownType(t *testing.T) {
	_, err := DecodeEntity(models.ItemType("wallets"), json.RawMessage(`{}`))
	assert.True(t, IsValidationError(err))

	_, err = DecodeEntity(models.ItemTypeTags, nil)
	assert.True(t, IsValidationError(err))
}

func TestDecodeEntity_RejectsPresetID(t *testing.T) {
	_, err := DecodeEntity(models.ItemTypeCategories, json.RawMessage(`{"id":"c9","name":"Rent","type":"expense"}`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "assigned on commit")

	_, err = DecodeEntity(models.ItemTypeActions, json.RawMessage(`{"id":"","date":"2024-03-02T00:00:00Z","value":1,"type":"expense","categoryId":"cat-food"}`))
	assert.NoError(t, err)
}

func TestValidateQueueItem(t *testing.T) {
	item := models.QueueItem{
		Type:      models.ItemTypeCategories,
		Status:    models.ItemStatusReady,
		APIAction: models.APIActionAdd,
		Data:      json.RawMessage(`{"name":"Fuel","type":"expense"}`),
	}
	assert.NoError(t, ValidateQueueItem(item))

	bad := item
	bad.Status = "done"
	assert.Error(t, ValidateQueueItem(bad))

	bad = item
	bad.Data = json.RawMessage(`{"type":"expense"}`)
	assert.Error(t, ValidateQueueItem(bad))
}
