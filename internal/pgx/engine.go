package pgx

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// Result is the scored outcome for one drug.
type Result struct {
	Drug      string            `json:"drug"`
	Gene      Gene              `json:"gene"`
	Direction Direction         `json:"direction"`
	Score     int               `json:"score"`
	Phenotype Phenotype         `json:"phenotype"`
	Evidence  bool              `json:"evidence"` // false when no relevant marker was found
	Matched   []genotype.Marker `json:"-"`
	Explain   string            `json:"explanation"`
	Advisory  string            `json:"advisory,omitempty"`
}

// Engine scores marker maps against a drug table.
type Engine struct {
	drugs  []DrugRule
	logger *zap.Logger
}

// NewEngine creates an engine over the built-in drug table.
func NewEngine() *Engine {
	return NewEngineWithDrugs(Drugs())
}

// NewEngineWithDrugs creates an engine over a custom drug table.
func NewEngineWithDrugs(drugs []DrugRule) *Engine {
	return &Engine{
		drugs:  drugs,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Drugs returns the engine's drug table.
func (e *Engine) Drugs() []DrugRule {
	return e.drugs
}

// RSIDs returns every rsID any configured drug reads, without duplicates.
func (e *Engine) RSIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range e.drugs {
		for _, id := range d.RSIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Score produces exactly one result per configured drug, in table order.
// Missing markers count as absent evidence; a nil map is treated as empty.
func (e *Engine) Score(markers *genotype.MarkerMap) []Result {
	results := make([]Result, 0, len(e.drugs))
	for _, d := range e.drugs {
		results = append(results, e.scoreDrug(d, markers))
	}
	return results
}

func (e *Engine) scoreDrug(d DrugRule, markers *genotype.MarkerMap) Result {
	rule, ok := RuleFor(d.Gene)
	if !ok {
		e.logger.Warn("drug references gene without a rule",
			zap.String("drug", d.Name),
			zap.String("gene", d.Gene.String()))
		return Result{
			Drug:      d.Name,
			Gene:      d.Gene,
			Direction: d.Direction,
			Score:     d.Score(Unknown),
			Phenotype: Unknown,
			Explain:   fmt.Sprintf("%s No decision rule for %s => phenotype: %s.", d.Description, d.Gene, Unknown),
		}
	}

	matched := markers.Subset(rule.RSIDs())
	phenotype := rule.Decide(markers)

	r := Result{
		Drug:      d.Name,
		Gene:      d.Gene,
		Direction: d.Direction,
		Score:     d.Score(phenotype),
		Phenotype: phenotype,
		Evidence:  len(matched) > 0,
		Matched:   matched,
		Advisory:  d.Advisory(phenotype),
	}
	r.Explain = explain(d, r)

	e.logger.Debug("scored drug",
		zap.String("drug", d.Name),
		zap.String("gene", d.Gene.String()),
		zap.Int("matched", len(matched)),
		zap.String("phenotype", phenotype.String()),
		zap.Int("score", r.Score))

	return r
}

func explain(d DrugRule, r Result) string {
	found := "none found in file (no evidence of altered function, defaulting to normal)"
	if r.Evidence {
		found = genotype.FormatMarkers(r.Matched)
	}
	return fmt.Sprintf("%s Detected genotype markers: %s => phenotype: %s.", d.Description, found, r.Phenotype)
}
