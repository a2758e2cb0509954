package vcf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

func TestParser_PanelFile(t *testing.T) {
	parser := openTestParser(t, "pgx_panel.vcf")

	v, err := parser.Next()
	if err != nil {
		t.Fatalf("Failed to read variant: %v", err)
	}
	if v == nil {
		t.Fatal("Expected a variant, got nil")
	}

	if v.ID != "rs3892097" {
		t.Errorf("Expected ID rs3892097, got %s", v.ID)
	}
	if v.Pos != 42128945 {
		t.Errorf("Expected pos 42128945, got %d", v.Pos)
	}
	if v.Format != "GT" || v.Sample != "1/1" {
		t.Errorf("Expected FORMAT GT and sample 1/1, got %q %q", v.Format, v.Sample)
	}

	count := 1
	for {
		v, err := parser.Next()
		if err != nil {
			t.Fatalf("Error reading variant: %v", err)
		}
		if v == nil {
			break
		}
		count++
	}
	if count != 5 {
		t.Errorf("Expected 5 variants, got %d", count)
	}

	names := parser.SampleNames()
	if len(names) != 1 || names[0] != "SAMPLE1" {
		t.Errorf("Expected sample SAMPLE1, got %v", names)
	}
}

func TestParser_MissingHeader(t *testing.T) {
	input := "22\t42128945\trs3892097\tG\tA\n"

	_, err := NewParserFromReader(strings.NewReader(input))
	var fe *genotype.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FormatError, got %v", err)
	}
	if fe.Format != "vcf" {
		t.Errorf("Expected vcf format error, got %q", fe.Format)
	}
}

func TestParser_RowsBeforeHeaderSkipped(t *testing.T) {
	input := "garbage line\n" +
		"22\t1\trs1\tA\tG\n" +
		"#CHROM\tPOS\tID\tREF\tALT\n" +
		"22\t2\trs2\tC\tT\n"

	parser, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	if parser.SkippedBeforeHeader() != 2 {
		t.Errorf("Expected 2 skipped lines, got %d", parser.SkippedBeforeHeader())
	}

	v, err := parser.Next()
	if err != nil || v == nil {
		t.Fatalf("Expected variant, got %v, %v", v, err)
	}
	if v.ID != "rs2" {
		t.Errorf("Expected rs2, got %s", v.ID)
	}
}

func TestParser_MalformedLines(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\n" +
		"22\t1\trs1\tA\n" +
		"22\t2\n" +
		"\n" +
		"22\t3\trs3\tA\tG" // no trailing newline

	parser, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	var parseErrs []*ParseError
	var variants []*Variant
	for {
		v, err := parser.Next()
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Unexpected error: %v", err)
			}
			parseErrs = append(parseErrs, pe)
			continue
		}
		if v == nil {
			break
		}
		variants = append(variants, v)
	}

	if len(parseErrs) != 2 {
		t.Fatalf("Expected 2 parse errors, got %d", len(parseErrs))
	}
	if parseErrs[0].Line != 2 || parseErrs[1].Line != 3 {
		t.Errorf("Unexpected error lines: %d, %d", parseErrs[0].Line, parseErrs[1].Line)
	}
	if len(variants) != 1 || variants[0].ID != "rs3" {
		t.Errorf("Expected only rs3 to parse, got %v", variants)
	}
}

func TestParser_UnreadablePositionKeepsRecord(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\n" +
		"10\t.\trs4244285\tG\tA\n" +
		"10\tabc\trs12248560\tC\tT\n"

	parser, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	for _, want := range []string{"rs4244285", "rs12248560"} {
		v, err := parser.Next()
		if err != nil || v == nil {
			t.Fatalf("Expected %s, got %v, %v", want, v, err)
		}
		if v.ID != want || v.Pos != 0 {
			t.Errorf("Expected %s at pos 0, got %s at %d", want, v.ID, v.Pos)
		}
	}
}

func TestReadMarkers_PanelFile(t *testing.T) {
	f, err := os.Open(findTestFile(t, "pgx_panel.vcf"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	markers, err := ReadMarkers(f, nil)
	if err != nil {
		t.Fatalf("ReadMarkers: %v", err)
	}

	want := map[string]string{
		"rs3892097":  "AA",
		"rs1065852":  "GA",
		"rs4244285":  "GG",
		"rs12248560": "CT",
	}
	if markers.Len() != len(want) {
		t.Errorf("Expected %d markers, got %d", len(want), markers.Len())
	}
	for id, gt := range want {
		g, ok := markers.Get(id)
		if !ok {
			t.Errorf("Missing marker %s", id)
			continue
		}
		if g.String() != gt {
			t.Errorf("%s: expected %s, got %s", id, gt, g.String())
		}
	}
}

func TestReadMarkers_SitesOnlyFallsBackToRefAlt(t *testing.T) {
	f, err := os.Open(findTestFile(t, "sites_only.vcf"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	markers, err := ReadMarkers(f, nil)
	if err != nil {
		t.Fatalf("ReadMarkers: %v", err)
	}

	g, ok := markers.Get("rs887829")
	if !ok || g.String() != "CT" {
		t.Errorf("Expected rs887829 CT, got %v (present=%v)", g.String(), ok)
	}
}

func TestReadMarkers_MultiAllelic(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"1\t100\trs100\tG\tA,T\t.\t.\t.\tGT\t2/1\n" +
		"1\t200\trs200\tG\tA,T\t.\t.\t.\tGT\t1|2\n"

	markers, err := ReadMarkers(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ReadMarkers: %v", err)
	}

	g, _ := markers.Get("rs100")
	if g.String() != "TA" {
		t.Errorf("Expected TA for 2/1, got %s", g.String())
	}
	g, _ = markers.Get("rs200")
	if g.String() != "AT" {
		t.Errorf("Expected AT for 1|2, got %s", g.String())
	}
}

func TestReadMarkers_MissingHeaderIsFormatError(t *testing.T) {
	_, err := ReadMarkers(strings.NewReader("##fileformat=VCFv4.2\n"), nil)
	var fe *genotype.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FormatError, got %v", err)
	}
}

func TestReadMarkers_MissingPosition(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"10\t.\trs4244285\tG\tA\t.\t.\t.\tGT\t1/1\n"

	markers, err := ReadMarkers(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ReadMarkers: %v", err)
	}
	g, ok := markers.Get("rs4244285")
	if !ok || g.String() != "AA" {
		t.Errorf("Expected rs4244285 AA, got %q (present=%v)", g.String(), ok)
	}
}

func TestReadMarkers_MultiSampleReadsFirst(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\tS2\n" +
		"10\t94781859\trs4244285\tG\tA\t.\t.\t.\tGT\t0/1\t1/1\n"

	core, logs := observer.New(zap.InfoLevel)
	markers, err := ReadMarkers(strings.NewReader(input), zap.New(core))
	if err != nil {
		t.Fatalf("ReadMarkers: %v", err)
	}
	g, _ := markers.Get("rs4244285")
	if g.String() != "GA" {
		t.Errorf("Expected GA from the first sample, got %s", g.String())
	}
	if logs.FilterField(zap.String("sample", "S1")).Len() != 1 {
		t.Errorf("Expected one log entry naming sample S1, got %d", logs.Len())
	}
}

func TestReadMarkers_DropsNonRSIDAndMalformed(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\n" +
		"1\t100\t.\tG\tA\n" +
		"1\t101\tchr1_101\tG\tA\n" +
		"1\t102\trs102\n" +
		"1\t103\trs103\tG\tA\n"

	markers, err := ReadMarkers(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ReadMarkers: %v", err)
	}
	if markers.Len() != 1 {
		t.Fatalf("Expected 1 marker, got %d", markers.Len())
	}
	if _, ok := markers.Get("rs103"); !ok {
		t.Error("Expected rs103")
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected at least 5 columns, found 3",
	}

	expected := "vcf parse error at line 42: expected at least 5 columns, found 3"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}

func openTestParser(t *testing.T, name string) *Parser {
	t.Helper()

	f, err := os.Open(findTestFile(t, name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	parser, err := NewParserFromReader(f)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	return parser
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
