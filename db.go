package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS load_audits (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path        TEXT NOT NULL,
		source_modified_at DATETIME,
		rows_read          INTEGER NOT NULL,
		numeric_fallbacks  INTEGER NOT NULL DEFAULT 0,
		date_fallbacks     INTEGER NOT NULL DEFAULT 0,
		loaded_at          DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_load_audits_loaded_at ON load_audits(loaded_at);

	CREATE TABLE IF NOT EXISTS kpi_snapshots (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		total_cases       INTEGER NOT NULL,
		total_fees        REAL NOT NULL,
		estimated_revenue REAL NOT NULL,
		mean_success_prob REAL NOT NULL,
		captured_at       DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_kpi_snapshots_captured_at ON kpi_snapshots(captured_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

type LoadAudit struct {
	ID               int64
	SourcePath       string
	SourceModifiedAt time.Time
	RowsRead         int
	NumericFallbacks int
	DateFallbacks    int
	LoadedAt         time.Time
}

func InsertLoadAudit(db *sql.DB, audit LoadAudit) error {
	_, err := db.Exec(
		`INSERT INTO load_audits (source_path, source_modified_at, rows_read, numeric_fallbacks, date_fallbacks, loaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		audit.SourcePath, audit.SourceModifiedAt, audit.RowsRead,
		audit.NumericFallbacks, audit.DateFallbacks, audit.LoadedAt,
	)
	return err
}

func GetRecentLoadAudits(db *sql.DB, limit int) ([]LoadAudit, error) {
	rows, err := db.Query(
		`SELECT id, source_path, source_modified_at, rows_read, numeric_fallbacks, date_fallbacks, loaded_at
		 FROM load_audits ORDER BY loaded_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []LoadAudit
	for rows.Next() {
		var a LoadAudit
		if err := rows.Scan(
			&a.ID, &a.SourcePath, &a.SourceModifiedAt, &a.RowsRead,
			&a.NumericFallbacks, &a.DateFallbacks, &a.LoadedAt,
		); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

func InsertKPISnapshot(db *sql.DB, s KPISummary, capturedAt time.Time) error {
	_, err := db.Exec(
		`INSERT INTO kpi_snapshots (total_cases, total_fees, estimated_revenue, mean_success_prob, captured_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.TotalCases, s.TotalFees, s.EstimatedRevenue, s.MeanSuccessProb, capturedAt,
	)
	return err
}

type KPITrendPoint struct {
	WeekStart           string
	Snapshots           int
	AvgTotalFees        float64
	AvgEstimatedRevenue float64
	AvgSuccessProb      float64
}

// GetWeeklyKPITrend aggregates snapshots into calendar weeks, newest first.
func GetWeeklyKPITrend(db *sql.DB, since time.Time) ([]KPITrendPoint, error) {
	rows, err := db.Query(
		`SELECT
		    strftime('%Y-%m-%d', captured_at, 'weekday 0', '-6 days') as week_start,
		    COUNT(*) as snapshots,
		    COALESCE(AVG(total_fees), 0),
		    COALESCE(AVG(estimated_revenue), 0),
		    COALESCE(AVG(mean_success_prob), 0)
		 FROM kpi_snapshots
		 WHERE captured_at >= ?
		 GROUP BY week_start
		 ORDER BY week_start DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []KPITrendPoint
	for rows.Next() {
		var p KPITrendPoint
		if err := rows.Scan(&p.WeekStart, &p.Snapshots, &p.AvgTotalFees, &p.AvgEstimatedRevenue, &p.AvgSuccessProb); err != nil {
			return nil, err
		}
		trend = append(trend, p)
	}
	return trend, rows.Err()
}

// RecordLoad persists the audit row and KPI snapshot for a completed load.
func RecordLoad(db *sql.DB, ds *Dataset, result LoadResult) error {
	if err := InsertLoadAudit(db, LoadAudit{
		SourcePath:       ds.SourcePath,
		SourceModifiedAt: ds.SourceModTime,
		RowsRead:         result.RowsRead,
		NumericFallbacks: result.NumericFallbacks,
		DateFallbacks:    result.DateFallbacks,
		LoadedAt:         ds.LoadedAt,
	}); err != nil {
		return err
	}
	return InsertKPISnapshot(db, Summarize(ds.Records), ds.LoadedAt)
}
