package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/inodb/vibe-pgx/internal/analyze"
	"github.com/inodb/vibe-pgx/internal/genotype"
	"github.com/inodb/vibe-pgx/internal/pgx"
)

// MarkerDoc is the JSON form of one marker call.
type MarkerDoc struct {
	RSID     string `json:"rsid"`
	Genotype string `json:"genotype"`
}

// ResultDoc is the JSON form of one drug result.
type ResultDoc struct {
	pgx.Result
	Markers map[string]string `json:"markers"`
}

// ReportDoc is the JSON form of an analysis report.
type ReportDoc struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"`
	Format      string            `json:"format"`
	Compression string            `json:"compression"`
	Strategy    string            `json:"strategy,omitempty"`
	MarkerCount int               `json:"marker_count"`
	Matched     int               `json:"matched_markers"`
	Preview     []MarkerDoc       `json:"preview"`
	Results     []ResultDoc       `json:"results"`
	Warnings    []analyze.Warning `json:"warnings,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewReportDoc converts a report to its JSON document.
func NewReportDoc(rep *analyze.Report) *ReportDoc {
	doc := &ReportDoc{
		ID:          rep.ID.String(),
		Source:      rep.Source,
		Format:      string(rep.Format),
		Compression: rep.Compression,
		Strategy:    rep.Strategy,
		MarkerCount: rep.MarkerCount,
		Matched:     rep.Matched,
		Preview:     MarkerDocs(rep.Preview),
		Results:     make([]ResultDoc, len(rep.Results)),
		Warnings:    rep.Warnings,
		CreatedAt:   rep.CreatedAt,
	}
	for i, r := range rep.Results {
		doc.Results[i] = ResultDoc{Result: r, Markers: genotypesByID(r.Matched)}
	}
	return doc
}

// MarkerDocs converts markers to their JSON form, keeping order.
func MarkerDocs(markers []genotype.Marker) []MarkerDoc {
	out := make([]MarkerDoc, len(markers))
	for i, m := range markers {
		out[i] = MarkerDoc{RSID: m.ID, Genotype: m.Genotype.Display()}
	}
	return out
}

// genotypesByID maps rsID to the same genotype form MarkerDocs uses.
func genotypesByID(markers []genotype.Marker) map[string]string {
	out := make(map[string]string, len(markers))
	for _, m := range markers {
		out[m.ID] = m.Genotype.Display()
	}
	return out
}

// JSONWriter writes reports as indented JSON.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONWriter{enc: enc}
}

// WriteReport writes a full report document.
func (jw *JSONWriter) WriteReport(rep *analyze.Report) error {
	return jw.enc.Encode(NewReportDoc(rep))
}

// WriteValue writes any JSON-encodable value.
func (jw *JSONWriter) WriteValue(v any) error {
	return jw.enc.Encode(v)
}
