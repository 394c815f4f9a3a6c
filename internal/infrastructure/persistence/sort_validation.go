package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC, defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted and defaultField
// otherwise. Column names are interpolated into ORDER BY, so only whitelisted
// names may pass.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InvoiceSortFields are the columns an invoice listing may sort by.
var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"due_date":       true,
	"total_amount":   true,
	"amount_due":     true,
	"status":         true,
}

// NotificationLogSortFields are the columns a delivery log listing may sort by.
var NotificationLogSortFields = map[string]bool{
	"created_at": true,
	"sent_at":    true,
	"recipient":  true,
	"status":     true,
}

// OutboxSortFields are the columns a dead-letter listing may sort by.
var OutboxSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"event_type": true,
}

func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(field, allowed, defaultField) + " " + ValidateSortOrder(dir)
}
