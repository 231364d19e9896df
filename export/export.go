// Package export renders expense lists as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return string(f)
}

var headers = []string{"ID", "Date", "Vendor", "Category", "Source", "Amount", "Description"}

func row(e models.Expense) []string {
	return []string{
		fmt.Sprint(e.ID),
		e.TransactionDate.String(),
		e.Vendor,
		e.Category,
		e.SourceName,
		e.Amount.StringFixed(models.MoneyScale),
		e.Description,
	}
}

// Write renders expenses to w in the given format.
func Write(w io.Writer, f Format, expenses []models.Expense) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, expenses)
	case FormatXLSX:
		return WriteXLSX(w, expenses)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCSV writes a UTF-8 BOM, so spreadsheet apps detect the encoding,
// followed by a header row and one row per expense.
func WriteCSV(w io.Writer, expenses []models.Expense) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Expenses"

// WriteXLSX writes a single-sheet workbook. Amounts are stored as numbers
// so the sheet can sum them.
func WriteXLSX(w io.Writer, expenses []models.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
	}

	for idx, e := range expenses {
		r := idx + 2
		amount, _ := e.Amount.Round(models.MoneyScale).Float64()
		values := []any{e.ID, e.TransactionDate.String(), e.Vendor, e.Category, e.SourceName, amount, e.Description}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "E", 20)
	f.SetColWidth(sheetName, "F", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 40)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
