// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// minFields is the number of columns needed to read CHROM POS ID REF ALT.
const minFields = 5

// columnIndices holds the positions of the columns the parser reads,
// taken from the #CHROM header line.
type columnIndices struct {
	Chrom  int
	Pos    int
	ID     int
	Ref    int
	Alt    int
	Format int
}

// Parser reads variants from a VCF file.
// Parsing is best-effort: lines before the #CHROM header are skipped and
// malformed data lines are reported as *ParseError without stopping the
// parser.
type Parser struct {
	reader      *bufio.Reader
	lineNumber  int
	columns     columnIndices
	sampleNames []string // sample names from #CHROM header line
	skipped     int      // lines skipped before the #CHROM header
	unplaced    int      // records whose POS is not an integer
	eof         bool
}

// NewParserFromReader creates a parser over already decompressed VCF text.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// readLine returns the next line without its terminator.
// ok is false once the input is exhausted.
func (p *Parser) readLine() (string, bool, error) {
	if p.eof {
		return "", false, nil
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return "", false, err
		}
		p.eof = true
		if line == "" {
			return "", false, nil
		}
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), true, nil
}

// parseHeader reads meta lines up to and including the #CHROM line.
func (p *Parser) parseHeader() error {
	for {
		line, ok, err := p.readLine()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if !ok {
			break
		}

		if strings.HasPrefix(line, "##") {
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.parseColumns(line)
			return nil
		}

		// Rows before the header cannot be aligned to columns.
		p.skipped++
	}

	return &genotype.FormatError{
		Format: "vcf",
		Reason: "no #CHROM header line found",
	}
}

// parseColumns aligns the parser to the #CHROM header line.
func (p *Parser) parseColumns(line string) {
	fields := strings.Split(strings.TrimPrefix(line, "#"), "\t")

	p.columns = columnIndices{Chrom: 0, Pos: 1, ID: 2, Ref: 3, Alt: 4, Format: -1}
	for i, f := range fields {
		switch strings.TrimSpace(f) {
		case "CHROM":
			p.columns.Chrom = i
		case "POS":
			p.columns.Pos = i
		case "ID":
			p.columns.ID = i
		case "REF":
			p.columns.Ref = i
		case "ALT":
			p.columns.Alt = i
		case "FORMAT":
			p.columns.Format = i
		}
	}

	if p.columns.Format >= 0 && len(fields) > p.columns.Format+1 {
		p.sampleNames = fields[p.columns.Format+1:]
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants. A malformed line yields
// a *ParseError; the parser stays usable and the next call moves on.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, ok, err := p.readLine()
		if err != nil {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if !ok {
			return nil, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minFields, len(fields)),
		}
	}

	field := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	v := &Variant{
		Chrom: field(p.columns.Chrom),
		ID:    field(p.columns.ID),
		Ref:   field(p.columns.Ref),
		Alt:   field(p.columns.Alt),
	}

	// Markers are keyed by rsID, so an unreadable POS leaves Pos at 0.
	if pos, err := strconv.ParseInt(field(p.columns.Pos), 10, 64); err == nil {
		v.Pos = pos
	} else {
		p.unplaced++
	}

	if p.columns.Format >= 0 {
		v.Format = field(p.columns.Format)
		v.Sample = field(p.columns.Format + 1)
	}

	return v, nil
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// SkippedBeforeHeader returns how many lines preceded the #CHROM line
// without being meta lines.
func (p *Parser) SkippedBeforeHeader() int {
	return p.skipped
}

// ReadMarkers reads every rs-identified record from r into a MarkerMap.
// Malformed records and records without an rsID are dropped; a missing
// #CHROM header is a *genotype.FormatError.
func ReadMarkers(r io.Reader, logger *zap.Logger) (*genotype.MarkerMap, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p, err := NewParserFromReader(r)
	if err != nil {
		return nil, err
	}
	if p.SkippedBeforeHeader() > 0 {
		logger.Debug("skipped lines before #CHROM header",
			zap.Int("lines", p.SkippedBeforeHeader()))
	}
	if samples := p.SampleNames(); len(samples) > 1 {
		logger.Info("multi-sample vcf, reading genotypes of the first sample only",
			zap.String("sample", samples[0]),
			zap.Int("samples", len(samples)))
	}

	markers := genotype.NewMarkerMap()
	records, malformed, unnamed := 0, 0, 0
	for {
		v, err := p.Next()
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				malformed++
				logger.Debug("skipping malformed vcf record",
					zap.Int("line", pe.Line),
					zap.String("reason", pe.Message))
				continue
			}
			return nil, err
		}
		if v == nil {
			break
		}
		records++

		ids := v.RSIDs()
		if len(ids) == 0 {
			unnamed++
			continue
		}
		g := v.Genotype()
		for _, id := range ids {
			markers.Set(id, g)
		}
	}

	logger.Debug("parsed vcf",
		zap.Int("records", records),
		zap.Int("malformed", malformed),
		zap.Int("without_rsid", unnamed),
		zap.Int("without_position", p.unplaced),
		zap.Int("markers", markers.Len()))

	return markers, nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
