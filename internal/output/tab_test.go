package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/genotype"
	"github.com/inodb/vibe-pgx/internal/pgx"
)

func scoreOne(t *testing.T, calls map[string]string) []pgx.Result {
	t.Helper()
	m := genotype.NewMarkerMap()
	for id, gt := range calls {
		m.Set(id, genotype.Parse(gt))
	}
	return pgx.NewEngine().Score(m)
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	for _, col := range []string{"#Drug", "Gene", "Direction", "Phenotype", "Score", "Evidence", "Explanation"} {
		assert.Contains(t, header, col)
	}
}

func TestTabWriter_Write_ClopidogrelPoor(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	results := scoreOne(t, map[string]string{"rs4244285": "AA"})
	require.NoError(t, w.Write(&results[1]))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 9)
	assert.Equal(t, "Clopidogrel", fields[0])
	assert.Equal(t, "CYP2C19", fields[1])
	assert.Equal(t, "activation", fields[2])
	assert.Equal(t, "poor", fields[3])
	assert.Equal(t, "20", fields[4])
	assert.Equal(t, "observed", fields[5])
	assert.Equal(t, "rs4244285: AA", fields[6])
	assert.NotEqual(t, "-", fields[7])
}

func TestTabWriter_Write_NoEvidence(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	results := scoreOne(t, nil)
	require.NoError(t, w.Write(&results[2]))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 9)
	assert.Equal(t, "Ibuprofen", fields[0])
	assert.Equal(t, "normal", fields[3])
	assert.Equal(t, "absent", fields[5])
	assert.Equal(t, "-", fields[6])
	assert.Equal(t, "-", fields[7])
	assert.Contains(t, fields[8], "none found in file")
}

func TestMarkerWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewMarkerWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(genotype.Marker{ID: "rs887829", Genotype: genotype.Parse("TA6/TA7")}))
	require.NoError(t, w.Write(genotype.Marker{ID: "rs1", Genotype: genotype.Parse("c/t")}))
	require.NoError(t, w.Write(genotype.Marker{ID: "rs2", Genotype: genotype.Parse("")}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "#rsid\tgenotype\nrs887829\tTA6/TA7\nrs1\tCT\nrs2\t-\n", buf.String())
}

func TestDash(t *testing.T) {
	assert.Equal(t, "-", dash(""))
	assert.Equal(t, "a b c", dash("a\tb\nc"))
}
