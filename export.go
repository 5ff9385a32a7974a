package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// csvColumns matches the in-memory column names, source columns first and
// derived columns last.
var csvColumns = []string{
	"ID", "Cliente_Display", "Area", "Advogado", "Status", "Valor_Causa",
	"Honorarios", "UF", "Cidade", "Data_Abertura", "Probabilidade_Exito",
	"Faturamento_Estimado", "Dias_Aberto",
}

// WriteCSVReport writes the filtered subset as a UTF-8 CSV with a header row,
// one row per surviving record, and returns the file path. The raw client
// name is deliberately absent; only the anonymized display name is exported.
func WriteCSVReport(records []CaseRecord, outputDir string, reportDate time.Time, firmName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.csv", sanitizeFilename(firmName), reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return "", err
	}
	for _, rec := range records {
		openingDate := ""
		daysOpen := ""
		if rec.HasOpeningDate() {
			openingDate = rec.OpeningDate.Format("2006-01-02")
			daysOpen = strconv.Itoa(rec.DaysOpen)
		}
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.ClientDisplay,
			rec.Area,
			rec.Lawyer,
			rec.Status,
			formatAmount(rec.ClaimValue),
			formatAmount(rec.Fee),
			rec.State,
			rec.City,
			openingDate,
			formatAmount(rec.SuccessProb),
			formatAmount(rec.EstimatedRevenue),
			daysOpen,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
