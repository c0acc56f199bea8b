package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"garage_finance/internal/models"
)

// Legacy snapshots carry zone-less timestamps with up to 7 fractional digits.
var breakdownTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type breakdownDoc struct {
	Method          string          `json:"Method"`
	CalculationDate time.Time       `json:"CalculationDate"`
	Items           []breakdownItem `json:"Items"`
}

type breakdownItem struct {
	PartId           uint        `json:"PartId"`
	PartName         string      `json:"PartName"`
	PartNumber       string      `json:"PartNumber"`
	QuantityUsed     int         `json:"QuantityUsed"`
	UnitCost         json.Number `json:"UnitCost"`
	TotalCost        json.Number `json:"TotalCost"`
	BatchNumber      *string     `json:"BatchNumber,omitempty"`
	BatchReceiveDate *time.Time  `json:"BatchReceiveDate,omitempty"`
}

func encodeBreakdown(method models.CostingMethod, calculatedAt time.Time, items []models.COGSLineItem) (string, error) {
	doc := breakdownDoc{
		Method:          method.String(),
		CalculationDate: calculatedAt,
		Items:           make([]breakdownItem, 0, len(items)),
	}
	for _, item := range items {
		entry := breakdownItem{
			PartId:       item.PartID,
			PartName:     item.PartName,
			PartNumber:   item.PartNumber,
			QuantityUsed: item.QuantityUsed,
			UnitCost:     json.Number(item.UnitCost.String()),
			TotalCost:    json.Number(item.TotalCost.String()),
		}
		if method == models.CostingFIFO {
			entry.BatchNumber = item.BatchNumber
			entry.BatchReceiveDate = item.BatchReceiveDate
		}
		doc.Items = append(doc.Items, entry)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode COGS breakdown: %w", err)
	}
	return string(data), nil
}

// decodedBreakdown holds the usable items of a snapshot and the indexes
// of items that were dropped for missing or malformed properties.
type decodedBreakdown struct {
	Items   []models.COGSLineItem
	Skipped []skippedItem
}

type skippedItem struct {
	Index  int
	Reason string
}

var requiredItemFields = []string{"PartId", "PartName", "PartNumber", "QuantityUsed", "UnitCost", "TotalCost"}

// decodeBreakdown fails only when the document itself is unreadable.
func decodeBreakdown(raw string, method models.CostingMethod) (*decodedBreakdown, error) {
	var doc struct {
		Items json.RawMessage `json:"Items"`
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed COGS breakdown: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("malformed COGS breakdown: unexpected data after document")
	}

	out := &decodedBreakdown{Items: []models.COGSLineItem{}}
	if len(doc.Items) == 0 || bytes.Equal(bytes.TrimSpace(doc.Items), []byte("null")) {
		return out, nil
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(doc.Items, &entries); err != nil {
		return nil, fmt.Errorf("malformed COGS breakdown items: %w", err)
	}

	for i, entry := range entries {
		item, err := decodeBreakdownItem(entry, method)
		if err != nil {
			out.Skipped = append(out.Skipped, skippedItem{Index: i, Reason: err.Error()})
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func decodeBreakdownItem(entry map[string]json.RawMessage, method models.CostingMethod) (models.COGSLineItem, error) {
	item := models.COGSLineItem{Method: method}
	for _, field := range requiredItemFields {
		if _, ok := entry[field]; !ok {
			return item, fmt.Errorf("missing property %s", field)
		}
	}

	var partName, partNumber *string
	if err := json.Unmarshal(entry["PartId"], &item.PartID); err != nil {
		return item, fmt.Errorf("PartId: %w", err)
	}
	if err := json.Unmarshal(entry["PartName"], &partName); err != nil {
		return item, fmt.Errorf("PartName: %w", err)
	}
	if err := json.Unmarshal(entry["PartNumber"], &partNumber); err != nil {
		return item, fmt.Errorf("PartNumber: %w", err)
	}
	if err := json.Unmarshal(entry["QuantityUsed"], &item.QuantityUsed); err != nil {
		return item, fmt.Errorf("QuantityUsed: %w", err)
	}
	if err := item.UnitCost.UnmarshalJSON(entry["UnitCost"]); err != nil {
		return item, fmt.Errorf("UnitCost: %w", err)
	}
	if err := item.TotalCost.UnmarshalJSON(entry["TotalCost"]); err != nil {
		return item, fmt.Errorf("TotalCost: %w", err)
	}
	if partName != nil {
		item.PartName = *partName
	}
	if partNumber != nil {
		item.PartNumber = *partNumber
	}

	if raw, ok := entry["BatchNumber"]; ok {
		var batch *string
		if json.Unmarshal(raw, &batch) == nil {
			item.BatchNumber = batch
		}
	}
	if raw, ok := entry["BatchReceiveDate"]; ok {
		var value *string
		if json.Unmarshal(raw, &value) == nil && value != nil {
			item.BatchReceiveDate = parseBreakdownTime(*value)
		}
	}
	return item, nil
}

func parseBreakdownTime(value string) *time.Time {
	for _, layout := range breakdownTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
