package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/analyze"
	"github.com/inodb/vibe-pgx/internal/genotype"
)

func TestJSONWriter_WriteReport(t *testing.T) {
	rep, err := analyze.NewAnalyzer().Analyze("genome.csv",
		strings.NewReader("rsid,genotype\nrs4244285,A/A\nrs5,GG\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter(&buf).WriteReport(rep))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, rep.ID.String(), doc["id"])
	assert.Equal(t, "table", doc["format"])
	assert.Equal(t, float64(2), doc["marker_count"])
	assert.Equal(t, float64(1), doc["matched_markers"])

	preview := doc["preview"].([]any)
	require.Len(t, preview, 2)
	assert.Equal(t, map[string]any{"rsid": "rs4244285", "genotype": "AA"}, preview[0])

	results := doc["results"].([]any)
	require.Len(t, results, 5)
	omeprazole := results[4].(map[string]any)
	assert.Equal(t, "Omeprazole", omeprazole["drug"])
	assert.Equal(t, "CYP2C19", omeprazole["gene"])
	assert.Equal(t, "clearance", omeprazole["direction"])
	assert.Equal(t, "poor", omeprazole["phenotype"])
	assert.Equal(t, float64(95), omeprazole["score"])
	assert.Equal(t, map[string]any{"rs4244285": "AA"}, omeprazole["markers"])
	assert.NotContains(t, doc, "warnings")
}

func TestNewReportDoc_GenotypeFormConsistent(t *testing.T) {
	m := genotype.NewMarkerMap()
	m.Set("rs887829", genotype.Parse("TA6/TA7"))

	doc := NewReportDoc(analyze.NewAnalyzer().AnalyzeMarkers("inline", m))
	require.Len(t, doc.Preview, 1)
	assert.Equal(t, "TA6/TA7", doc.Preview[0].Genotype)

	paracetamol := doc.Results[3]
	assert.Equal(t, "Paracetamol", paracetamol.Drug)
	assert.Equal(t, map[string]string{"rs887829": doc.Preview[0].Genotype}, paracetamol.Markers)
}

func TestNewReportDoc_Warnings(t *testing.T) {
	rep, err := analyze.NewAnalyzer().Analyze("genome.csv", strings.NewReader("rsid,genotype\n"))
	require.NoError(t, err)

	doc := NewReportDoc(rep)
	assert.Equal(t, []analyze.Warning{analyze.WarningNoMarkers}, doc.Warnings)
	assert.Empty(t, doc.Preview)
	assert.Len(t, doc.Results, 5)
}
