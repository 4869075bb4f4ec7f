package csvparse

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rocjay1/ledger-sync/internal/models"
	"github.com/shopspring/decimal"
)

// ParseActions parses ledger actions from a CSV string with the columns
// Date, Amount, Category, Description, Track Only and Credit Card. Category
// holds a category name and is resolved against doc; the action type is the
// category's type. It returns the actions and one message per invalid row.
func ParseActions(content string, doc models.Document) ([]models.Action, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Read all records
	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Action{}, nil // Empty or header-only
	}

	headers := parseHeaders(records[0])
	categories := categoriesByName(doc)
	actions := []models.Action{}
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string)
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		a, err := mapToAction(rowMap, categories)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		actions = append(actions, *a)
	}

	return actions, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func categoriesByName(doc models.Document) map[string]models.Category {
	byName := make(map[string]models.Category, len(doc.Categories))
	for _, c := range doc.Categories {
		byName[strings.ToLower(c.Name)] = c
	}
	return byName
}

func mapToAction(row map[string]string, categories map[string]models.Category) (*models.Action, error) {
	dateStr := row["Date"]
	if dateStr == "" {
		return nil, fmt.Errorf("missing Date")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Date format: %s", dateStr)
	}

	amountStr := row["Amount"]
	if amountStr == "" {
		return nil, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Amount: %s", amountStr)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative Amount: %s", amountStr)
	}

	catName := row["Category"]
	if catName == "" {
		return nil, fmt.Errorf("missing Category")
	}
	category, ok := categories[strings.ToLower(catName)]
	if !ok {
		return nil, fmt.Errorf("unknown Category: %s", catName)
	}

	trackOnly, err := parseFlag(row["Track Only"])
	if err != nil {
		return nil, fmt.Errorf("invalid Track Only: %w", err)
	}
	withCard, err := parseFlag(row["Credit Card"])
	if err != nil {
		return nil, fmt.Errorf("invalid Credit Card: %w", err)
	}

	return &models.Action{
		Date:           date,
		Value:          amount,
		Type:           category.Type,
		CategoryID:     category.ID,
		Description:    row["Description"],
		TrackOnly:      trackOnly,
		WithCreditCard: withCard,
	}, nil
}

// parseFlag treats an empty cell as false.
func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}
