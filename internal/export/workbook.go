package export

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ppiankov/fundscrape/internal/model"
	"github.com/xuri/excelize/v2"
)

// Workbook writes one sheet per table to an .xlsx file
type Workbook struct {
	Path        string
	NameWidth   float64 // Width of the project name and URL columns
	MoneyWidth  float64 // Width of finance value columns
	MoneyFormat string  // Number format of finance value columns
}

// NewWorkbook creates a workbook exporter with the default layout
func NewWorkbook(path string) *Workbook {
	return &Workbook{
		Path:        path,
		NameWidth:   30,
		MoneyWidth:  12,
		MoneyFormat: "$#,##0",
	}
}

// Write creates the workbook, replacing any existing file at Path
func (w *Workbook) Write(tables []*model.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()

	moneyFormat := w.MoneyFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}

	for i, table := range tables {
		sheet := table.Kind.SheetName()
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := w.writeTable(f, sheet, table, money); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Workbook) writeTable(f *excelize.File, sheet string, table *model.Table, money int) error {
	header := make([]interface{}, 0, len(model.BaseHeader)+len(table.Taxonomy))
	for _, h := range table.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = CellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "B", "C", w.NameWidth); err != nil {
		return err
	}

	if table.Kind != model.TableFinance || len(table.Taxonomy) == 0 {
		return nil
	}

	first, err := excelize.ColumnNumberToName(len(model.BaseHeader) + 1)
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(model.BaseHeader) + len(table.Taxonomy))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, first, last, w.MoneyWidth); err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, first+":"+last, money); err != nil {
		return err
	}
	if table.Len() > 0 {
		return f.SetCellStyle(sheet, first+"2", fmt.Sprintf("%s%d", last, table.Len()+1), money)
	}
	return nil
}

// Plain decimal notation only; "nan", "inf" and hex forms stay text
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CellValue converts a rendered value to its cell representation: numbers
// become numeric cells, everything else (sentinels included) stays text
func CellValue(s string) interface{} {
	if model.IsSentinel(s) || !numberPattern.MatchString(s) {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}
