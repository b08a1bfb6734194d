package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/billcheck/internal/model"
)

// ValidateSchema checks that the Parquet schema contains the identifying
// columns and at least one amount column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	for _, col := range model.LineItemColumns() {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	amountCols := model.LineItemAmountColumns()
	for _, col := range amountCols {
		if columns[col] {
			return nil
		}
	}
	return fmt.Errorf("no amount columns found; need at least one of: %s",
		strings.Join(amountCols, ", "))
}
