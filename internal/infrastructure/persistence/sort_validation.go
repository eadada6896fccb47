package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// FactSortFields contains allowed sort fields for fact queries
var FactSortFields = map[string]bool{
	"sale_id":       true,
	"order_id":      true,
	"customer_id":   true,
	"seller_id":     true,
	"product_id":    true,
	"order_date":    true,
	"delivery_date": true,
	"price":         true,
	"total_amount":  true,
}

// RFMSortFields contains allowed sort fields for RFM mart queries
var RFMSortFields = map[string]bool{
	"customer_id":  true,
	"recency_days": true,
	"frequency":    true,
	"monetary":     true,
	"rfm_score":    true,
}

// DailySalesSortFields contains allowed sort fields for the daily sales mart
var DailySalesSortFields = map[string]bool{
	"date":                true,
	"total_orders":        true,
	"total_revenue":       true,
	"average_order_value": true,
}
