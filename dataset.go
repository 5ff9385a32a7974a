package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrSourceNotFound marks a missing spreadsheet so callers can offer to
// regenerate sample data instead of showing a generic load error.
var ErrSourceNotFound = errors.New("case spreadsheet not found")

// SchemaError reports required columns absent after header normalization.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required columns missing after normalization: %s", strings.Join(e.Missing, ", "))
}

var requiredColumns = []string{
	"ID", "Cliente", "Area", "Advogado", "Status", "Valor_Causa",
	"Honorarios", "UF", "Cidade", "Data_Abertura", "Probabilidade_Exito",
}

// LoadResult tracks separate counters for each cell-level fallback. Coercion
// failures are sanitized, not escalated, so these counters are the only
// visibility into how dirty the source file was.
type LoadResult struct {
	RowsRead         int
	NumericFallbacks int
	DateFallbacks    int
}

// LoadCaseFile reads the case spreadsheet at path and returns the cleaned,
// derived-field-enriched dataset. It never returns a partial table: any fatal
// condition (missing file, missing column) yields a nil dataset. DaysOpen is
// measured against now, so it is fixed per load, not per render.
func LoadCaseFile(path string, now time.Time) (*Dataset, LoadResult, error) {
	var result LoadResult

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, result, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, result, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, result, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, result, fmt.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, result, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	colIndex := make(map[string]int)
	if len(rows) > 0 {
		for i, header := range rows[0] {
			colIndex[NormalizeHeader(header)] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, result, &SchemaError{Missing: missing}
	}

	ds := &Dataset{
		SourcePath:    path,
		SourceModTime: info.ModTime(),
		LoadedAt:      now,
	}
	for _, row := range rows[1:] {
		result.RowsRead++
		rec := CaseRecord{
			Client: cell(row, colIndex["Cliente"]),
			Area:   strings.TrimSpace(cell(row, colIndex["Area"])),
			Lawyer: strings.TrimSpace(cell(row, colIndex["Advogado"])),
			Status: strings.TrimSpace(cell(row, colIndex["Status"])),
			State:  strings.TrimSpace(cell(row, colIndex["UF"])),
			City:   strings.TrimSpace(cell(row, colIndex["Cidade"])),
		}
		rec.ID, _ = strconv.ParseInt(strings.TrimSpace(cell(row, colIndex["ID"])), 10, 64)

		rec.ClaimValue = coerceNumber(cell(row, colIndex["Valor_Causa"]), &result)
		rec.Fee = coerceNumber(cell(row, colIndex["Honorarios"]), &result)
		rec.SuccessProb = coerceNumber(cell(row, colIndex["Probabilidade_Exito"]), &result)
		rec.OpeningDate = coerceDate(cell(row, colIndex["Data_Abertura"]), &result)

		rec.EstimatedRevenue = rec.ClaimValue * rec.SuccessProb
		if rec.HasOpeningDate() {
			rec.DaysOpen = int(now.Sub(rec.OpeningDate).Hours() / 24)
		}
		rec.ClientDisplay = AnonymizeClient(rec.Client)

		ds.Records = append(ds.Records, rec)
	}

	return ds, result, nil
}

func cell(row []string, idx int) string {
	// GetRows drops trailing empty cells, so short rows are expected.
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// NormalizeHeader trims surrounding whitespace and strips Unicode combining
// marks, so "Área " and "Area" address the same column. Idempotent.
func NormalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}

// coerceNumber parses a numeric cell, accepting a comma decimal separator.
// Unparseable values become exactly 0, never an error: the sanitize-to-zero
// policy means downstream sums silently include such rows.
func coerceNumber(s string, result *LoadResult) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		result.NumericFallbacks++
		return 0
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil {
		return v
	}
	result.NumericFallbacks++
	return 0
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"1/2/06 15:04",
}

// coerceDate parses a date cell. Unlike numeric coercion, failures become the
// missing-date marker (zero time), which propagates as missing rather than as
// a zero-day-old case.
func coerceDate(s string, result *LoadResult) time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	// Date cells without a date style arrive as Excel serial numbers.
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}
	result.DateFallbacks++
	return time.Time{}
}

// AnonymizeClient masks a client name down to its first name. Cells holding a
// bare number were never names and display as "N/A"; blank cells display as
// the fixed anonymous marker.
func AnonymizeClient(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil {
			return "N/A"
		}
	}
	parts := strings.Fields(trimmed)
	if len(parts) == 0 {
		return "CLIENTE_ANONIMO"
	}
	return parts[0] + " *****"
}
