package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/duckdb"
)

const genome23andMe = "# This data file generated by 23andMe\n" +
	"# rsid\tchromosome\tposition\tgenotype\n" +
	"rs4244285\t10\t94781859\tAA\n" +
	"rs3892097\t22\t42524947\tAG\n" +
	"rs12345\t1\t1000\tCT\n"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScore_Tab(t *testing.T) {
	path := writeInput(t, "genome.txt", genome23andMe)

	stdout, _, err := execute(t, "score", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "#Drug\t"))
	assert.True(t, strings.HasPrefix(lines[1], "Codeine\tCYP2D6\tactivation\tintermediate\t40\t"))
	assert.True(t, strings.HasPrefix(lines[2], "Clopidogrel\tCYP2C19\tactivation\tpoor\t20\t"))
	assert.True(t, strings.HasPrefix(lines[5], "Omeprazole\tCYP2C19\tclearance\tpoor\t95\t"))
}

func TestScore_JSON(t *testing.T) {
	path := writeInput(t, "genome.txt", genome23andMe)

	stdout, _, err := execute(t, "score", "--format", "json", "--preview", "2", path)
	require.NoError(t, err)

	var doc struct {
		Source      string `json:"source"`
		MarkerCount int    `json:"marker_count"`
		Preview     []any  `json:"preview"`
		Results     []any  `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "genome.txt", doc.Source)
	assert.Equal(t, 3, doc.MarkerCount)
	assert.Len(t, doc.Preview, 2)
	assert.Len(t, doc.Results, 5)
}

func TestScore_OutputFileAndDuckDB(t *testing.T) {
	path := writeInput(t, "genome.txt", genome23andMe)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "report.tsv")
	dbPath := filepath.Join(dir, "results.duckdb")

	stdout, stderr, err := execute(t, "score", "-o", outPath, "--duckdb", dbPath, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Exported report")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Clopidogrel")

	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	results, err := store.SearchByDrug("Clopidogrel")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(20), results[0].Score)
}

func TestScore_Warnings(t *testing.T) {
	path := writeInput(t, "other.csv", "rsid,genotype\nrs1,AA\n")

	_, stderr, err := execute(t, "score", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: None of the pharmacogenomic markers were found")
}

func TestRun_ExitCodes(t *testing.T) {
	good := writeInput(t, "genome.txt", genome23andMe)
	garbage := writeInput(t, "garbage.csv", "\x00\x01\x02\x03")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"score", good}, ExitSuccess},
		{"unknown format", []string{"score", "-f", "xml", good}, ExitUsage},
		{"unparseable input", []string{"score", garbage}, ExitError},
		{"missing file", []string{"score", filepath.Join(t.TempDir(), "nope.vcf")}, ExitError},
		{"missing argument", []string{"score"}, ExitUsage},
		{"unknown flag", []string{"score", "--bogus", good}, ExitUsage},
		{"unknown command", []string{"frobnicate"}, ExitUsage},
		{"unknown config subcommand", []string{"config", "frobnicate"}, ExitUsage},
		{"too many arguments", []string{"markers", good, good}, ExitUsage},
		{"unknown drug", []string{"drugs", "aspirin"}, ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("HOME", t.TempDir())
			assert.Equal(t, tt.want, run(tt.args))
		})
	}
}

func TestMarkers(t *testing.T) {
	path := writeInput(t, "genome.txt", genome23andMe)

	stdout, stderr, err := execute(t, "markers", "-n", "2", path)
	require.NoError(t, err)
	assert.Equal(t, "#rsid\tgenotype\nrs4244285\tAA\nrs3892097\tAG\n", stdout)
	assert.Contains(t, stderr, "Showing 2 of 3 markers")

	stdout, _, err = execute(t, "markers", "--all", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "rs12345\tCT\n")
}

func TestMarkers_PreviewLimitFromEnv(t *testing.T) {
	path := writeInput(t, "genome.txt", genome23andMe)
	t.Setenv("VIBE_PGX_PREVIEW_LIMIT", "1")

	stdout, _, err := execute(t, "markers", path)
	require.NoError(t, err)
	assert.Equal(t, "#rsid\tgenotype\nrs4244285\tAA\n", stdout)
}

func TestDrugsAndGenes(t *testing.T) {
	stdout, _, err := execute(t, "drugs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Paracetamol\tUGT1A1\tclearance\t60\t75\t88\t88\t88\t50\n")

	stdout, _, err = execute(t, "drugs", "-f", "json")
	require.NoError(t, err)
	var drugs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &drugs))
	assert.Len(t, drugs, 5)

	stdout, _, err = execute(t, "drugs", "omeprazole")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Omeprazole\tCYP2C19\tclearance\t")
	assert.NotContains(t, stdout, "Paracetamol")

	stdout, _, err = execute(t, "genes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "UGT1A1\trs887829\tT\t-\t*80\n")
}

func TestConfigSetGet(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "pgx.yaml")

	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: tab\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "config", "set", "preview.limit", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Set preview.limit = 5")

	stdout, _, err = execute(t, "--config", cfgPath, "config", "get", "preview.limit")
	require.NoError(t, err)
	assert.Equal(t, "5\n", stdout)

	stdout, _, err = execute(t, "--config", cfgPath, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Config file: "+cfgPath)
	assert.Contains(t, stdout, "server:")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "vibe-pgx version dev")
}

func TestScore_MultipleFiles(t *testing.T) {
	first := writeInput(t, "first.txt", genome23andMe)
	second := writeInput(t, "second.csv", "rsid,genotype\nrs887829,TT\n")
	garbage := writeInput(t, "garbage.csv", "\x00\x01\x02")

	stdout, _, err := execute(t, "score", "-w", "2", first, second)
	require.NoError(t, err)
	firstAt := strings.Index(stdout, "## source: "+first)
	secondAt := strings.Index(stdout, "## source: "+second)
	require.GreaterOrEqual(t, firstAt, 0)
	assert.Greater(t, secondAt, firstAt)
	assert.Contains(t, stdout[secondAt:], "Paracetamol\tUGT1A1\tclearance\tpoor\t60\t")

	stdout, stderr, err := execute(t, "score", first, garbage, second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 inputs")
	assert.Contains(t, stderr, "Error: "+garbage)
	assert.Equal(t, 2, strings.Count(stdout, "## source: "))
}
