// Package output provides report formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-pgx/internal/genotype"
	"github.com/inodb/vibe-pgx/internal/pgx"
)

// TabWriter writes drug results in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited result writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Drug",
			"Gene",
			"Direction",
			"Phenotype",
			"Score",
			"Evidence",
			"Markers",
			"Advisory",
			"Explanation",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single drug result.
func (tw *TabWriter) Write(r *pgx.Result) error {
	evidence := "absent"
	if r.Evidence {
		evidence = "observed"
	}

	markers := "-"
	if len(r.Matched) > 0 {
		markers = genotype.FormatMarkers(r.Matched)
	}

	values := []string{
		r.Drug,
		r.Gene.String(),
		r.Direction.String(),
		r.Phenotype.String(),
		fmt.Sprintf("%d", r.Score),
		evidence,
		markers,
		dash(r.Advisory),
		dash(r.Explain),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// MarkerWriter writes a marker preview as rsid/genotype rows.
type MarkerWriter struct {
	w *bufio.Writer
}

// NewMarkerWriter creates a new tab-delimited marker writer.
func NewMarkerWriter(w io.Writer) *MarkerWriter {
	return &MarkerWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (mw *MarkerWriter) WriteHeader() error {
	_, err := mw.w.WriteString("#rsid\tgenotype\n")
	return err
}

// Write writes a single marker.
func (mw *MarkerWriter) Write(m genotype.Marker) error {
	_, err := fmt.Fprintf(mw.w, "%s\t%s\n", m.ID, dash(m.Genotype.Display()))
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (mw *MarkerWriter) Flush() error {
	return mw.w.Flush()
}

// cellReplacer keeps free text on a single tab-delimited row.
var cellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return cellReplacer.Replace(s)
}
