// Package analyze runs one upload through parsing and scoring and collects
// what a presentation layer needs: a marker preview, drug results, and soft
// warnings.
package analyze

import (
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genotype"
	"github.com/inodb/vibe-pgx/internal/input"
	"github.com/inodb/vibe-pgx/internal/pgx"
)

// DefaultPreviewLimit is the number of markers shown in a preview.
const DefaultPreviewLimit = 25

// Warning is a soft, non-fatal condition attached to a report.
type Warning string

const (
	WarningNoMarkers         Warning = "No recognizable markers found in the file. Make sure the file contains rsIDs or a genotype table."
	WarningNoRelevantMarkers Warning = "None of the pharmacogenomic markers were found; results show default normal-function scores."
	WarningNonStandardLayout Warning = "The file was read as a gene/value table; its keys are not rsIDs."
)

// Report is the outcome of analyzing one file.
type Report struct {
	ID          uuid.UUID           `json:"id"`
	Source      string              `json:"source"`
	Format      input.Format        `json:"format"`
	Compression string              `json:"compression"`
	Strategy    string              `json:"strategy,omitempty"`
	MarkerCount int                 `json:"marker_count"`
	Matched     int                 `json:"matched_markers"`
	Preview     []genotype.Marker   `json:"-"`
	Markers     *genotype.MarkerMap `json:"-"`
	Results     []pgx.Result        `json:"results"`
	Warnings    []Warning           `json:"warnings,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Analyzer parses uploads and scores them.
type Analyzer struct {
	loader       *input.Loader
	engine       *pgx.Engine
	previewLimit int
	logger       *zap.Logger
}

// NewAnalyzer creates an analyzer with the built-in rule tables.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		loader:       input.NewLoader(),
		engine:       pgx.NewEngine(),
		previewLimit: DefaultPreviewLimit,
		logger:       zap.NewNop(),
	}
}

// SetPreviewLimit sets how many markers the report preview holds.
func (a *Analyzer) SetPreviewLimit(n int) {
	a.previewLimit = n
}

// SetMaxBytes limits the decompressed size of an upload.
func (a *Analyzer) SetMaxBytes(n int64) {
	a.loader.SetMaxBytes(n)
}

// SetLogger sets the logger for the analyzer and its parsers.
func (a *Analyzer) SetLogger(l *zap.Logger) {
	a.logger = l
	a.loader.SetLogger(l)
	a.engine.SetLogger(l)
}

// Engine returns the scoring engine.
func (a *Analyzer) Engine() *pgx.Engine {
	return a.engine
}

// AnalyzeFile analyzes the file at path ("-" for stdin).
func (a *Analyzer) AnalyzeFile(path string) (*Report, error) {
	loaded, err := a.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return a.report(loaded), nil
}

// Analyze reads an upload named name from r. Parse failures are returned
// before any scoring happens.
func (a *Analyzer) Analyze(name string, r io.Reader) (*Report, error) {
	loaded, err := a.loader.Load(name, r)
	if err != nil {
		return nil, err
	}
	return a.report(loaded), nil
}

// AnalyzeMarkers scores an already-parsed marker map.
func (a *Analyzer) AnalyzeMarkers(source string, markers *genotype.MarkerMap) *Report {
	return a.report(&input.Loaded{Name: source, Markers: markers})
}

func (a *Analyzer) report(loaded *input.Loaded) *Report {
	markers := loaded.Markers
	if markers == nil {
		markers = genotype.NewMarkerMap()
	}

	rep := &Report{
		ID:          uuid.New(),
		Source:      loaded.Name,
		Format:      loaded.Format,
		Compression: loaded.Compression.String(),
		Strategy:    loaded.Strategy,
		MarkerCount: markers.Len(),
		Matched:     len(markers.Subset(a.engine.RSIDs())),
		Preview:     markers.Preview(a.previewLimit),
		Markers:     markers,
		Results:     a.engine.Score(markers),
		CreatedAt:   time.Now().UTC(),
	}

	switch {
	case rep.MarkerCount == 0:
		rep.Warnings = append(rep.Warnings, WarningNoMarkers)
	case rep.Matched == 0:
		rep.Warnings = append(rep.Warnings, WarningNoRelevantMarkers)
	}
	if loaded.Strategy == "gene-value-row" {
		rep.Warnings = append(rep.Warnings, WarningNonStandardLayout)
	}

	for _, w := range rep.Warnings {
		a.logger.Warn("analysis warning",
			zap.String("source", rep.Source),
			zap.String("warning", string(w)))
	}
	a.logger.Info("analyzed input",
		zap.String("id", rep.ID.String()),
		zap.String("source", rep.Source),
		zap.String("format", string(rep.Format)),
		zap.Int("markers", rep.MarkerCount),
		zap.Int("matched", rep.Matched))

	return rep
}
