package table

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// Standard marker table column names (matched case-insensitively).
const (
	ColRSID     = "rsid"
	ColGenotype = "genotype"
)

// Strategy interprets a tokenized table as markers. Parse reports false when
// the table does not have the layout the strategy understands.
type Strategy struct {
	Name  string
	Parse func(t *Table) (*genotype.MarkerMap, bool)
}

// DefaultStrategies lists the supported layouts from strictest to most
// permissive. The first strategy that accepts a table wins.
var DefaultStrategies = []Strategy{
	{Name: "labeled-columns", Parse: parseLabeledColumns},
	{Name: "headerless-pairs", Parse: parseHeaderlessPairs},
	{Name: "gene-value-row", Parse: parseGeneValueRow},
}

// Parser reads marker tables.
type Parser struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewParser creates a parser using DefaultStrategies.
func NewParser() *Parser {
	return &Parser{
		strategies: DefaultStrategies,
		logger:     zap.NewNop(),
	}
}

// SetStrategies replaces the ordered strategy list.
func (p *Parser) SetStrategies(s []Strategy) {
	p.strategies = s
}

// SetLogger sets the logger for debug messages.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Parse reads all of r and returns its markers together with the name of
// the strategy that matched. An empty MarkerMap is a valid result.
func (p *Parser) Parse(r io.Reader) (*genotype.MarkerMap, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read table: %w", err)
	}

	t, err := Tokenize(data)
	if err != nil {
		return nil, "", err
	}

	for _, s := range p.strategies {
		markers, ok := s.Parse(t)
		if !ok {
			continue
		}
		p.logger.Debug("parsed marker table",
			zap.String("strategy", s.Name),
			zap.String("delimiter", t.Delimiter),
			zap.Int("rows", len(t.Rows)),
			zap.Int("markers", markers.Len()))
		return markers, s.Name, nil
	}

	return nil, "", &genotype.FormatError{Format: "table", Reason: "no recognizable column layout"}
}

// ReadMarkers parses r with the default strategies.
func ReadMarkers(r io.Reader, logger *zap.Logger) (*genotype.MarkerMap, error) {
	p := NewParser()
	if logger != nil {
		p.SetLogger(logger)
	}
	markers, _, err := p.Parse(r)
	return markers, err
}

// columnIndex returns the index of name in header, ignoring case, or -1.
func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

// parseLabeledColumns reads tables with explicit rsid and genotype columns.
func parseLabeledColumns(t *Table) (*genotype.MarkerMap, bool) {
	rsCol := columnIndex(t.Header, ColRSID)
	gtCol := columnIndex(t.Header, ColGenotype)
	if rsCol == -1 || gtCol == -1 {
		return nil, false
	}

	markers := genotype.NewMarkerMap()
	for _, row := range t.Rows {
		if rsCol >= len(row) || gtCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[rsCol])
		if !genotype.IsRSID(id) {
			continue
		}
		markers.Set(id, genotype.Parse(row[gtCol]))
	}
	return markers, true
}

// parseHeaderlessPairs reads files whose first line is already an
// (rsid, genotype) pair rather than a header.
func parseHeaderlessPairs(t *Table) (*genotype.MarkerMap, bool) {
	looksLikeMarker := false
	for _, h := range t.Header {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(h)), "rs") {
			looksLikeMarker = true
			break
		}
	}
	if !looksLikeMarker {
		return nil, false
	}

	markers := genotype.NewMarkerMap()
	rows := append([][]string{t.Header}, t.Rows...)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if !genotype.IsRSID(id) {
			continue
		}
		markers.Set(id, genotype.Parse(row[1]))
	}
	return markers, true
}

// parseGeneValueRow reads a single-row table keyed by its header, such as
// "CYP2D6,CYP2C19" over "*1/*4,*1/*1". Values are kept verbatim and the keys
// are not rsIDs.
func parseGeneValueRow(t *Table) (*genotype.MarkerMap, bool) {
	if len(t.Rows) == 0 {
		return nil, false
	}

	row := t.Rows[0]
	markers := genotype.NewMarkerMap()
	for i, h := range t.Header {
		key := strings.TrimSpace(h)
		if key == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		markers.Set(key, genotype.Verbatim(value))
	}
	return markers, true
}
