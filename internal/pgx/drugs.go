package pgx

import (
	"maps"
	"strings"
)

// DrugRule describes how one drug's score follows from its gene's phenotype.
type DrugRule struct {
	Name        string
	Description string
	Gene        Gene
	Direction   Direction
	// Scores maps phenotype to effectiveness score (0-100). Labels missing
	// from the table score DefaultScore.
	Scores       map[Phenotype]int
	DefaultScore int
	// Advisories holds optional phenotype-specific notes shown with a result.
	Advisories map[Phenotype]string
}

// Score returns the drug's score for p.
func (d DrugRule) Score(p Phenotype) int {
	if s, ok := d.Scores[p]; ok {
		return s
	}
	return d.DefaultScore
}

// Advisory returns the note attached to p, if any.
func (d DrugRule) Advisory(p Phenotype) string {
	return d.Advisories[p]
}

// RSIDs returns the markers the drug's gene rule reads.
func (d DrugRule) RSIDs() []string {
	r, _ := RuleFor(d.Gene)
	return r.RSIDs()
}

func (d DrugRule) clone() DrugRule {
	d.Scores = maps.Clone(d.Scores)
	d.Advisories = maps.Clone(d.Advisories)
	return d
}

// defaultScore applies to Unknown and to labels a drug table leaves out.
const defaultScore = 50

var drugRules = []DrugRule{
	{
		Name:        "Codeine",
		Description: "Codeine is converted to morphine by CYP2D6. Poor metabolizers get little pain relief; ultrarapid may have toxicity.",
		Gene:        CYP2D6,
		Direction:   Activation,
		Scores: map[Phenotype]int{
			Poor:         10,
			Intermediate: 40,
			Normal:       85,
			Rapid:        95,
			Ultrarapid:   99,
		},
		DefaultScore: defaultScore,
		Advisories: map[Phenotype]string{
			Poor: "Codeine may be ineffective for poor CYP2D6 metabolizers.",
		},
	},
	{
		Name:        "Clopidogrel",
		Description: "Clopidogrel requires activation by CYP2C19. Poor metabolizers have reduced antiplatelet effect.",
		Gene:        CYP2C19,
		Direction:   Activation,
		Scores: map[Phenotype]int{
			Poor:         20,
			Intermediate: 50,
			Normal:       90,
			Rapid:        90,
			Ultrarapid:   90,
		},
		DefaultScore: defaultScore,
		Advisories: map[Phenotype]string{
			Poor: "Poor CYP2C19 function may reduce Clopidogrel activation. This prototype is not clinical advice; consult a clinician.",
		},
	},
	{
		Name:        "Ibuprofen",
		Description: "Ibuprofen is metabolized by CYP2C9. Reduced function increases exposure and side-effect risk.",
		Gene:        CYP2C9,
		Direction:   Clearance,
		Scores: map[Phenotype]int{
			Poor:         70,
			Intermediate: 80,
			Normal:       85,
			Rapid:        85,
			Ultrarapid:   85,
		},
		DefaultScore: defaultScore,
	},
	{
		Name:        "Paracetamol",
		Description: "Paracetamol is largely glucuronidated (UGT1A1) and sulfated; variants may change toxicity risk.",
		Gene:        UGT1A1,
		Direction:   Clearance,
		Scores: map[Phenotype]int{
			Poor:         60,
			Intermediate: 75,
			Normal:       88,
			Rapid:        88,
			Ultrarapid:   88,
		},
		DefaultScore: defaultScore,
	},
	{
		Name:        "Omeprazole",
		Description: "Omeprazole is metabolized by CYP2C19; poor metabolizers have higher exposure.",
		Gene:        CYP2C19,
		Direction:   Clearance,
		Scores: map[Phenotype]int{
			Poor:         95,
			Intermediate: 75,
			Normal:       60,
			Rapid:        60,
			Ultrarapid:   60,
		},
		DefaultScore: defaultScore,
	},
}

// Drugs returns a copy of the drug table in declared order.
func Drugs() []DrugRule {
	out := make([]DrugRule, len(drugRules))
	for i, d := range drugRules {
		out[i] = d.clone()
	}
	return out
}

// DrugByName returns the rule for a drug, ignoring case.
func DrugByName(name string) (DrugRule, bool) {
	for _, d := range drugRules {
		if strings.EqualFold(d.Name, name) {
			return d.clone(), true
		}
	}
	return DrugRule{}, false
}
