package ledger

import (
	"testing"
	"time"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_Action(t *testing.T) {
	doc := sampleDocument()
	action := models.Action{
		Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Value:      decimal.RequireFromString("9.5"),
		Type:       models.EntryTypeExpense,
		CategoryID: "cat-food",
	}

	title, description, err := Describe(doc, action)
	require.NoError(t, err)
	assert.Equal(t, "Food", title)
	assert.Equal(t, "expense 9.50 on 2024-03-05", description)
}

func TestDescribe_ActionTypeMismatch(t *testing.T) {
	action := models.Action{
		Date:       time.Now(),
		Type:       models.EntryTypeIncome,
		CategoryID: "cat-food",
	}

	_, _, err := Describe(sampleDocument(), action)
	assert.True(t, IsValidationError(err))
}

func TestDescribe_UnknownCategory(t *testing.T) {
	_, _, err := Describe(sampleDocument(), models.Action{CategoryID: "nope", Type: models.EntryTypeExpense})
	assert.True(t, IsValidationError(err))

	_, _, err = Describe(sampleDocument(), models.Tag{Name: "x", CategoryIDs: []string{"nope"}})
	assert.True(t, IsValidationError(err))
}

func TestDescribe_TagAndCategory(t *testing.T) {
	doc := sampleDocument()

	title, description, err := Describe(doc, models.Tag{Name: "Both", CategoryIDs: []string{"cat-food", "cat-salary"}})
	require.NoError(t, err)
	assert.Equal(t, "Both", title)
	assert.Equal(t, "Food, Salary", description)

	title, description, err = Describe(doc, models.Category{Name: "Gifts", Type: models.EntryTypeIncome})
	require.NoError(t, err)
	assert.Equal(t, "Gifts", title)
	assert.Equal(t, "New income category", description)
}
