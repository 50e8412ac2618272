package reports

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook
const (
	SheetSummary = "Summary"
	SheetByYear  = "By Year"
	SheetByType  = "By Type"
)

// WriteXLSX writes the report as an Excel workbook
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetByYear); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetByType); err != nil {
		return err
	}

	summary := [][]interface{}{{"Property", "Rent", "Loan Payments", "Transactions", "Net"}}
	for _, p := range r.Properties {
		summary = append(summary, []interface{}{p.PropertyName, p.Rent, p.Payments, p.Transactions, p.Net})
	}
	totals := r.Totals()
	summary = append(summary, []interface{}{
		fmt.Sprintf("Total %d-%d", r.StartYear, r.EndYear), totals.Rent, totals.Payments, totals.Transactions, totals.Net,
	})
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	byYear := [][]interface{}{{"Property", "Year", "Rent", "Months Collected", "Loan Payments", "Transactions", "Net"}}
	for _, p := range r.Properties {
		for _, y := range p.Years {
			byYear = append(byYear, []interface{}{p.PropertyName, y.Year, y.Rent, y.RentMonths, y.Payments, y.Transactions, y.Net})
		}
	}
	if err := writeRows(f, SheetByYear, byYear); err != nil {
		return err
	}

	types := make([]string, 0, len(totals.ByType))
	for typ := range totals.ByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	byType := [][]interface{}{{"Transaction Type", "Amount"}}
	for _, typ := range types {
		byType = append(byType, []interface{}{typ, totals.ByType[typ]})
	}
	if err := writeRows(f, SheetByType, byType); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
