package analyzer

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/soil"
)

// TextAnalyzer reads plain text and CSV exports. Label/value rows are read
// first; free-form patterns fill in whatever the rows did not cover.
type TextAnalyzer struct{}

func (TextAnalyzer) Analyze(_ context.Context, doc Document) (lawn.SoilMeasurement, error) {
	if DetectFormat(doc) != FormatText {
		return lawn.SoilMeasurement{}, unsupported("%q is not a text or CSV report", doc.Name)
	}
	if !utf8.Valid(doc.Data) {
		return lawn.SoilMeasurement{}, parseFailure("report is not valid UTF-8 text", nil)
	}

	values := valuesFromRows(csvRows(doc.Data))
	for p, v := range soil.ParseText(string(doc.Data)) {
		if _, ok := values[p]; !ok {
			values[p] = v
		}
	}
	return measurementFrom(values, "text")
}

// SpreadsheetAnalyzer reads label/value rows from every sheet of an .xlsx
// workbook. The first sheet to report a parameter wins.
type SpreadsheetAnalyzer struct{}

func (SpreadsheetAnalyzer) Analyze(_ context.Context, doc Document) (lawn.SoilMeasurement, error) {
	if DetectFormat(doc) != FormatSpreadsheet {
		return lawn.SoilMeasurement{}, unsupported("%q is not an .xlsx workbook", doc.Name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		return lawn.SoilMeasurement{}, parseFailure("failed to open workbook", err)
	}
	defer f.Close()

	values := make(map[lawn.Parameter]float64)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return lawn.SoilMeasurement{}, parseFailure("failed to read sheet "+sheet, err)
		}
		for p, v := range valuesFromRows(rows) {
			if _, ok := values[p]; !ok {
				values[p] = v
			}
		}
	}
	return measurementFrom(values, "spreadsheet")
}

func measurementFrom(values map[lawn.Parameter]float64, source string) (lawn.SoilMeasurement, error) {
	cleaned := soil.CleanValues(values)
	if len(cleaned) == 0 {
		return lawn.SoilMeasurement{}, parseFailure("no soil values found in report", nil)
	}
	return lawn.SoilMeasurement{Values: cleaned, Source: source}, nil
}

func csvRows(data []byte) [][]string {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		rows = append(rows, rec)
	}
	return rows
}

// valuesFromRows reads rows whose first cell names a parameter. The value is
// the first later cell that starts with a positive number, so unit columns
// and "24 ppm" cells both work.
func valuesFromRows(rows [][]string) map[lawn.Parameter]float64 {
	out := make(map[lawn.Parameter]float64)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		p, ok := soil.LookupParameter(row[0])
		if !ok {
			continue
		}
		if _, seen := out[p]; seen {
			continue
		}
		for _, cell := range row[1:] {
			if v, ok := leadingValue(cell); ok {
				out[p] = v
				break
			}
		}
	}
	return out
}

func leadingValue(cell string) (float64, bool) {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
