// processing.go
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile         = errors.New("file has no header row")
	ErrNoSheets          = errors.New("workbook has no sheets")
	ErrUnsupportedFormat = errors.New("unsupported file type: want .csv, .xls or .xlsx")
)

// maxXLSRows caps how many rows the legacy .xls reader will walk.
const maxXLSRows = 100000

// SupportedExtension reports whether filename has an extension Load accepts.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	return false
}

// Load reads an uploaded spreadsheet. The first row is the header row and
// is kept untrimmed; only the first sheet of a workbook is read.
func Load(r io.Reader, filename string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: %w", filename, ErrEmptyFile)
	}
	return New(rows[0], rows[1:]), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	// GetRows renders date cells with their number format ("03-15-24"), so
	// date-styled cells are re-read as serials and written day-first.
	dateStyles := make(map[int]bool)
	for i, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, i+1)
			if err != nil {
				return nil, err
			}
			styleID, err := f.GetCellStyle(sheet, axis)
			if err != nil || styleID == 0 {
				continue
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				isDate = isDateStyle(f, styleID)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}
			raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
			if err != nil {
				continue
			}
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			ts, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			row[c] = ts.Format(CellDateLayout)
		}
	}
	return rows, nil
}

// CellDateLayout is how workbook date cells are written into a Table. It is
// day-first like the text dates found in CSV ledgers.
const CellDateLayout = "02/01/2006"

// Built-in number formats that show a calendar date.
var builtinDateFormats = map[int]bool{14: true, 15: true, 16: true, 17: true, 22: true}

var numFmtLiteral = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return builtinDateFormats[style.NumFmt]
}

// isDateFormat reports whether a custom number format code shows a day or
// year. Quoted text, bracketed colours and escaped characters are ignored.
func isDateFormat(code string) bool {
	code = strings.ToLower(numFmtLiteral.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "dy")
}

// xlsDateLayouts are the shapes extrame/xls renders date cells in. Built-in
// date formats only keep the year and month.
var xlsDateLayouts = []string{time.RFC3339, "2006.01"}

func parseXLSDate(s string) (time.Time, bool) {
	for _, layout := range xlsDateLayouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// normalizeXLSDates rewrites date columns of a .xls sheet into
// CellDateLayout. A column is converted only when every non-empty cell below
// the header parses as a rendered date, so amounts like 2024.03 stay numbers.
func normalizeXLSDates(rows [][]string) {
	if len(rows) < 2 {
		return
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for c := 0; c < width; c++ {
		seen, dates := false, true
		for _, row := range rows[1:] {
			if c >= len(row) || strings.TrimSpace(row[c]) == "" {
				continue
			}
			if _, ok := parseXLSDate(row[c]); !ok {
				dates = false
				break
			}
			seen = true
		}
		if !seen || !dates {
			continue
		}
		for _, row := range rows[1:] {
			if c >= len(row) {
				continue
			}
			if ts, ok := parseXLSDate(row[c]); ok {
				row[c] = ts.Format(CellDateLayout)
			}
		}
	}
}

func readXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoSheets
	}
	rows := wb.ReadAllCells(maxXLSRows)
	normalizeXLSDates(rows)
	return rows, nil
}

var thousandsPattern = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

func parseNumber(s string) (float64, bool) {
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumericColumns returns the positions of columns where at least 80% of the
// non-null cells are numbers.
func NumericColumns(t *Table) []int {
	var numericCols []int
	for i := range t.Columns {
		if isColumnNumeric(t.Columns[i]) {
			numericCols = append(numericCols, i)
		}
	}
	return numericCols
}

func isColumnNumeric(col Column) bool {
	numericCount := 0
	totalCount := 0
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		totalCount++
		if v.Kind() == Number {
			numericCount++
		}
	}
	if totalCount == 0 {
		return false
	}
	return float64(numericCount)/float64(totalCount) >= 0.8
}
