package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Catalog sheet columns, in order. The first row is a header and is skipped.
const (
	colName = iota
	colDescription
	colPrice
	colStock
	colCategory
	colTags
	minColumns = colPrice + 1
)

type skippedRow struct {
	Row    int
	Reason string
}

type importResult struct {
	Rows     int
	Products []model.Product
	Skipped  []skippedRow
}

func readProductsFromXLSX(filePath string) (*importResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	return parseProductRows(rows[1:]), nil
}

// parseProductRows turns sheet rows into products. Row numbers in the
// result are 1-based sheet rows, counting the header.
func parseProductRows(rows [][]string) *importResult {
	result := &importResult{Rows: len(rows)}
	seen := make(map[string]bool)

	for i, row := range rows {
		sheetRow := i + 2
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, skippedRow{Row: sheetRow, Reason: reason})
		}

		if len(row) < minColumns {
			skip("missing columns")
			continue
		}

		name := strings.TrimSpace(row[colName])
		if name == "" {
			skip("empty name")
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			skip("duplicate name")
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row[colPrice]))
		if err != nil || !price.IsPositive() {
			skip("invalid price")
			continue
		}

		stock := 0
		if raw := cell(row, colStock); raw != "" {
			stock, err = strconv.Atoi(raw)
			if err != nil || stock < 0 {
				skip("invalid stock")
				continue
			}
		}

		seen[key] = true
		result.Products = append(result.Products, model.Product{
			Name:          name,
			Description:   cell(row, colDescription),
			Price:         price.Round(2),
			StockQuantity: stock,
			Category:      cell(row, colCategory),
			Tags:          splitTags(cell(row, colTags)),
		})
	}

	return result
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
