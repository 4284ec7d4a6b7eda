// Package excel renders styling results as spreadsheet downloads for the
// dashboard's export button.
package excel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/styling"
)

const (
	districtSheet     = "Districts"
	municipalitySheet = "Municipalities"
)

// Exporter renders district aggregates to XLSX workbooks.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates a spreadsheet exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// DistrictWorkbook renders one styling result as a two-sheet workbook: the
// district rollup plus the underlying municipality rows, both in stable
// district-code order.
func (e *Exporter) DistrictWorkbook(result *styling.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	title := result.IndexCode
	if result.IndexName != "" {
		title = result.IndexName
	}
	f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("District export - %s", title),
		Subject:     "Climate index district aggregates",
		Creator:     "choropleth-styling-service",
		Description: fmt.Sprintf("%s, scenario %s, period %s", title, result.Scenario, result.Period),
		Created:     result.ComputedAt.Format(time.RFC3339),
	})

	codes := domain.SortedDistrictCodes(result.Districts)

	if err := e.writeDistrictSheet(f, result, codes); err != nil {
		return nil, fmt.Errorf("write district sheet: %w", err)
	}
	if err := e.writeMunicipalitySheet(f, result, codes); err != nil {
		return nil, fmt.Errorf("write municipality sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Debug("district workbook generated",
		"index", result.IndexCode, "districts", len(codes))
	return buf.Bytes(), nil
}

func (e *Exporter) writeDistrictSheet(f *excelize.File, result *styling.Result, codes []string) error {
	if _, err := f.NewSheet(districtSheet); err != nil {
		return err
	}

	headers := []string{
		"District code", "District name", "Municipalities", "Total area (km²)",
		"Mean", "Min", "Max", "Median", "Std dev",
	}
	if result.Unit != "" {
		headers[4] = fmt.Sprintf("Mean (%s)", result.Unit)
	}
	writeHeaderRow(f, districtSheet, headers)

	for i, code := range codes {
		agg := result.Districts[code]
		row := i + 2
		setRow(f, districtSheet, row,
			agg.Code, agg.Name, agg.Count, agg.TotalArea,
			agg.AggregatedValue, agg.Min, agg.Max, agg.Median, agg.StdDev)
	}

	return setColumnWidths(f, districtSheet, len(headers), 16)
}

func (e *Exporter) writeMunicipalitySheet(f *excelize.File, result *styling.Result, codes []string) error {
	if _, err := f.NewSheet(municipalitySheet); err != nil {
		return err
	}

	headers := []string{
		"District code", "Municipality code", "Municipality name",
		"Value", "Area (km²)", "Color",
	}
	writeHeaderRow(f, municipalitySheet, headers)

	row := 2
	for _, code := range codes {
		for _, member := range result.Districts[code].Members {
			// Missing model output stays a blank cell, not a zero.
			var value any
			if member.Value != nil {
				value = *member.Value
			}

			colorKey := member.Code
			if colorKey == "" {
				colorKey = member.ID
			}
			setRow(f, municipalitySheet, row,
				code, member.Code, member.Name, value, member.AreaKm2, result.Colors[colorKey])
			row++
		}
	}

	return setColumnWidths(f, municipalitySheet, len(headers), 18)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		f.SetCellValue(sheet, cell(i+1, 1), header)
	}
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		if v == nil {
			continue
		}
		f.SetCellValue(sheet, cell(i+1, row), v)
	}
}

func setColumnWidths(f *excelize.File, sheet string, columns int, width float64) error {
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, width)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
