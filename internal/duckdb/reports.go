package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-pgx/internal/analyze"
)

// ReportRow is a stored report header.
type ReportRow struct {
	ID          string
	Source      string
	Format      string
	Compression string
	Strategy    string
	MarkerCount int64
	Matched     int64
	Fingerprint FileFingerprint
}

// MarkerRow is a stored marker call.
type MarkerRow struct {
	RSID     string
	Genotype string
}

// ResultRow is a stored drug result.
type ResultRow struct {
	Drug        string
	Gene        string
	Direction   string
	Phenotype   string
	Score       int64
	Evidence    bool
	Explanation string
	Advisory    string
}

// WriteReport stores a report with all of its markers and drug results. fp
// may be zero when the report did not come from a file on disk. If any row
// fails to store, rows already written for the report are removed.
func (s *Store) WriteReport(rep *analyze.Report, fp FileFingerprint) error {
	id := rep.ID.String()

	var mtime any
	if !fp.ModTime.IsZero() {
		mtime = fp.ModTime
	}
	if _, err := s.db.Exec(`INSERT INTO reports VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rep.Source, string(rep.Format), rep.Compression, rep.Strategy,
		int64(rep.MarkerCount), int64(rep.Matched), fp.Size, mtime, rep.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	if err := s.writeRows(id, rep); err != nil {
		if derr := s.DeleteReport(id); derr != nil {
			return errors.Join(err, fmt.Errorf("remove partial report %s: %w", id, derr))
		}
		return err
	}
	return nil
}

func (s *Store) writeRows(id string, rep *analyze.Report) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := appendRows(conn, "markers", func(a *goduckdb.Appender) error {
		for i, m := range rep.Markers.Markers() {
			if err := a.AppendRow(id, int64(i), m.ID, m.Genotype.String()); err != nil {
				return fmt.Errorf("append marker %s: %w", m.ID, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return appendRows(conn, "drug_results", func(a *goduckdb.Appender) error {
		for i, r := range rep.Results {
			if err := a.AppendRow(
				id, int64(i), r.Drug, r.Gene.String(), r.Direction.String(),
				r.Phenotype.String(), int64(r.Score), r.Evidence, r.Explain, r.Advisory,
			); err != nil {
				return fmt.Errorf("append result %s: %w", r.Drug, err)
			}
		}
		return nil
	})
}

// appendRows runs fill against an Appender on table and flushes it.
func appendRows(conn *sql.Conn, table string, fill func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// LookupReport returns the stored header for a report ID.
func (s *Store) LookupReport(id string) (*ReportRow, error) {
	var r ReportRow
	var mtime sql.NullTime
	err := s.db.QueryRow(`SELECT
		report_id, source, format, compression, strategy,
		marker_count, matched_markers, source_size, source_mtime
		FROM reports WHERE report_id=?`, id).Scan(
		&r.ID, &r.Source, &r.Format, &r.Compression, &r.Strategy,
		&r.MarkerCount, &r.Matched, &r.Fingerprint.Size, &mtime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	if mtime.Valid {
		r.Fingerprint.ModTime = mtime.Time.UTC()
	}
	return &r, nil
}

// LookupMarkers returns a report's markers in file order.
func (s *Store) LookupMarkers(id string) ([]MarkerRow, error) {
	rows, err := s.db.Query(`SELECT rsid, genotype FROM markers
		WHERE report_id=? ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("query markers: %w", err)
	}
	defer rows.Close()

	var out []MarkerRow
	for rows.Next() {
		var m MarkerRow
		if err := rows.Scan(&m.RSID, &m.Genotype); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markers: %w", err)
	}
	return out, nil
}

// LookupResults returns a report's drug results in table order.
func (s *Store) LookupResults(id string) ([]ResultRow, error) {
	rows, err := s.db.Query(`SELECT
		drug, gene, direction, phenotype, score, evidence, explanation, advisory
		FROM drug_results WHERE report_id=? ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// SearchByDrug returns every stored result for a drug across reports.
func (s *Store) SearchByDrug(drug string) ([]ResultRow, error) {
	rows, err := s.db.Query(`SELECT
		drug, gene, direction, phenotype, score, evidence, explanation, advisory
		FROM drug_results WHERE lower(drug)=lower(?) ORDER BY report_id`, drug)
	if err != nil {
		return nil, fmt.Errorf("query by drug: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// scanResults scans rows into ResultRow slices.
func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]ResultRow, error) {
	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(
			&r.Drug, &r.Gene, &r.Direction, &r.Phenotype,
			&r.Score, &r.Evidence, &r.Explanation, &r.Advisory,
		); err != nil {
			return nil, fmt.Errorf("scan drug result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drug results: %w", err)
	}
	return out, nil
}

// DeleteReport removes a report and everything stored under it.
func (s *Store) DeleteReport(id string) error {
	for _, table := range []string{"drug_results", "markers", "reports"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE report_id=?", id); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}
