package pgx

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// Gene identifies a drug-metabolizing gene with a decision rule.
type Gene int

const (
	CYP2D6 Gene = iota
	CYP2C19
	CYP2C9
	UGT1A1
)

func (g Gene) String() string {
	switch g {
	case CYP2D6:
		return "CYP2D6"
	case CYP2C19:
		return "CYP2C19"
	case CYP2C9:
		return "CYP2C9"
	case UGT1A1:
		return "UGT1A1"
	}
	return fmt.Sprintf("Gene(%d)", int(g))
}

// MarshalText encodes the gene as its symbol.
func (g Gene) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a gene symbol.
func (g *Gene) UnmarshalText(text []byte) error {
	v, err := ParseGene(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseGene returns the gene for a symbol, ignoring case.
func ParseGene(s string) (Gene, error) {
	for _, g := range Genes {
		if strings.EqualFold(g.String(), strings.TrimSpace(s)) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gene %q", s)
}

// SiteRule names the alleles at one rsID that change enzyme function.
// An empty allele means the site carries no signal of that kind.
type SiteRule struct {
	RSID  string
	Loss  string // loss-of-function allele
	Gain  string // increased-function allele
	Label string // common star-allele name, for display
}

// GeneRule holds the marker sites a gene's phenotype is decided from.
type GeneRule struct {
	Gene  Gene
	Sites []SiteRule
}

// RSIDs returns the rsIDs the rule reads, in site order.
func (r GeneRule) RSIDs() []string {
	ids := make([]string, len(r.Sites))
	for i, s := range r.Sites {
		ids[i] = s.RSID
	}
	return ids
}

// Dosage counts loss and gain alleles across the observed sites, and how
// many of the rule's sites were present in markers.
func (r GeneRule) Dosage(markers *genotype.MarkerMap) (loss, gain, observed int) {
	for _, s := range r.Sites {
		g, ok := markers.Get(s.RSID)
		if !ok {
			continue
		}
		observed++
		loss += g.Count(s.Loss)
		gain += g.Count(s.Gain)
	}
	return loss, gain, observed
}

// Decide returns the phenotype implied by markers. Loss-of-function dosage
// takes priority: 1 copy is intermediate, 2 or more is poor. Without loss,
// gain dosage gives rapid (1) or ultrarapid (2 or more). No evidence at any
// site yields Normal; callers that need to tell the two apart use Dosage.
func (r GeneRule) Decide(markers *genotype.MarkerMap) Phenotype {
	loss, gain, _ := r.Dosage(markers)
	switch {
	case loss >= 2:
		return Poor
	case loss == 1:
		return Intermediate
	case gain >= 2:
		return Ultrarapid
	case gain == 1:
		return Rapid
	}
	return Normal
}

var geneRules = map[Gene]GeneRule{
	CYP2D6: {
		Gene: CYP2D6,
		Sites: []SiteRule{
			{RSID: "rs1065852", Loss: "A", Label: "*10"},
			{RSID: "rs3892097", Loss: "A", Label: "*4"},
		},
	},
	CYP2C19: {
		Gene: CYP2C19,
		Sites: []SiteRule{
			{RSID: "rs4244285", Loss: "A", Label: "*2"},
			{RSID: "rs12248560", Gain: "T", Label: "*17"},
		},
	},
	CYP2C9: {
		Gene: CYP2C9,
		Sites: []SiteRule{
			{RSID: "rs1799853", Loss: "T", Label: "*2"},
			{RSID: "rs1057910", Loss: "C", Label: "*3"},
		},
	},
	UGT1A1: {
		Gene: UGT1A1,
		Sites: []SiteRule{
			{RSID: "rs887829", Loss: "T", Label: "*80"},
		},
	},
}

// Genes lists the genes with rules, in table order.
var Genes = []Gene{CYP2D6, CYP2C19, CYP2C9, UGT1A1}

// RuleFor returns the rule for g. The returned value shares no mutable
// state with the table.
func RuleFor(g Gene) (GeneRule, bool) {
	r, ok := geneRules[g]
	if !ok {
		return GeneRule{}, false
	}
	r.Sites = append([]SiteRule(nil), r.Sites...)
	return r, true
}
