package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeTestSheet(t *testing.T, path string, header []string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

// accentedHeader is the raw header row as it appears in real source files,
// with accents and stray whitespace.
var accentedHeader = []string{
	"ID", "Cliente", "Área ", "Advogado", "Status", "Valor_Causa",
	"Honorários", "UF", "Cidade", "Data_Abertura", "Probabilidade_Êxito",
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Área ", "Area"},
		{"Honorários", "Honorarios"},
		{"Probabilidade_Êxito", "Probabilidade_Exito"},
		{" Data_Abertura ", "Data_Abertura"},
		{"ID", "ID"},
	}
	for _, tc := range cases {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Fatalf("NormalizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
		// Normalizing an already-normalized name is a no-op.
		if got := NormalizeHeader(tc.want); got != tc.want {
			t.Fatalf("NormalizeHeader(%q) not idempotent, got %q", tc.want, got)
		}
	}
}

func TestCoerceNumberTotalFunction(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100000", 100000},
		{"0.4", 0.4},
		{"1234,56", 1234.56},
		{" 42 ", 42},
		{"", 0},
		{"abc", 0},
		{"R$ 100", 0},
	}
	for _, tc := range cases {
		var result LoadResult
		if got := coerceNumber(tc.in, &result); got != tc.want {
			t.Fatalf("coerceNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCoerceDateFallsBackToMissing(t *testing.T) {
	var result LoadResult
	if got := coerceDate("2025-03-10", &result); got.IsZero() {
		t.Fatal("expected ISO date to parse")
	}
	if got := coerceDate("not a date", &result); !got.IsZero() {
		t.Fatalf("expected missing marker, got %v", got)
	}
	if result.DateFallbacks != 1 {
		t.Fatalf("expected 1 date fallback, got %d", result.DateFallbacks)
	}
	if got := coerceDate("", &result); !got.IsZero() {
		t.Fatalf("expected missing marker for empty cell, got %v", got)
	}
	// Excel serial for 2025-01-01.
	serial := coerceDate("45658", &result)
	if serial.Year() != 2025 || serial.Month() != time.January || serial.Day() != 1 {
		t.Fatalf("unexpected serial date: %v", serial)
	}
}

func TestAnonymizeClientRuleTable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Carlos Silva", "Carlos *****"},
		{"Ana", "Ana *****"},
		{"", "CLIENTE_ANONIMO"},
		{"   ", "CLIENTE_ANONIMO"},
		{"12345", "N/A"},
		{"1234,56", "N/A"},
	}
	for _, tc := range cases {
		if got := AnonymizeClient(tc.in); got != tc.want {
			t.Fatalf("AnonymizeClient(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadCaseFileDerivedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	writeTestSheet(t, path, accentedHeader, [][]interface{}{
		{1001, "Carlos Silva", "Cível", "Ana Oliveira", "Execução", "100000", "5000", "SP", "São Paulo", "2025-06-10", "0.4"},
		{1002, "Beatriz Rocha", "Penal", "Roberto Santos", "Suspenso", "garbage", "oops", "RJ", "Rio", "never", "0.9"},
	})

	ds, result, err := LoadCaseFile(path, now)
	if err != nil {
		t.Fatalf("LoadCaseFile failed: %v", err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ds.Records))
	}
	if result.RowsRead != 2 {
		t.Fatalf("expected rows_read=2, got %d", result.RowsRead)
	}

	first := ds.Records[0]
	if first.ID != 1001 {
		t.Fatalf("unexpected ID: %d", first.ID)
	}
	if first.EstimatedRevenue != 40000 {
		t.Fatalf("expected estimated revenue 40000, got %v", first.EstimatedRevenue)
	}
	if !first.HasOpeningDate() || first.DaysOpen != 10 {
		t.Fatalf("expected 10 days open, got %d (has=%v)", first.DaysOpen, first.HasOpeningDate())
	}
	if first.ClientDisplay != "Carlos *****" {
		t.Fatalf("unexpected client display: %q", first.ClientDisplay)
	}

	second := ds.Records[1]
	if second.ClaimValue != 0 || second.Fee != 0 {
		t.Fatalf("expected sanitized zeros, got claim=%v fee=%v", second.ClaimValue, second.Fee)
	}
	if second.HasOpeningDate() {
		t.Fatal("expected missing opening date to stay missing")
	}
	if second.EstimatedRevenue != 0 {
		t.Fatalf("expected zero estimated revenue, got %v", second.EstimatedRevenue)
	}
	if result.NumericFallbacks != 2 {
		t.Fatalf("expected 2 numeric fallbacks, got %d", result.NumericFallbacks)
	}
	if result.DateFallbacks != 1 {
		t.Fatalf("expected 1 date fallback, got %d", result.DateFallbacks)
	}
}

func TestLoadCaseFileSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	header := []string{"ID", "Cliente", "Área", "Advogado", "Status", "Valor_Causa", "UF", "Cidade", "Data_Abertura"}
	writeTestSheet(t, path, header, nil)

	ds, _, err := LoadCaseFile(path, time.Now())
	if ds != nil {
		t.Fatal("expected no dataset on schema mismatch")
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	for _, want := range []string{"Honorarios", "Probabilidade_Exito"} {
		found := false
		for _, col := range schemaErr.Missing {
			if col == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s in missing columns, got %v", want, schemaErr.Missing)
		}
	}
	if !strings.Contains(err.Error(), "Honorarios") {
		t.Fatalf("expected offending column in message, got %q", err.Error())
	}
}

func TestLoadCaseFileSourceNotFound(t *testing.T) {
	ds, _, err := LoadCaseFile(filepath.Join(t.TempDir(), "missing.xlsx"), time.Now())
	if ds != nil {
		t.Fatal("expected no dataset for missing file")
	}
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}
