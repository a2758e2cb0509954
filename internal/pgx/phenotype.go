// Package pgx maps pharmacogenomic marker genotypes to metabolizer
// phenotypes and per-drug effectiveness scores.
//
// Scores are illustrative table lookups for demonstration only; they are not
// clinical advice.
package pgx

import (
	"fmt"
	"strings"
)

// Phenotype is a metabolizer status.
type Phenotype int

// Phenotype values. Order is only meaningful within a single gene.
const (
	Unknown Phenotype = iota
	Poor
	Intermediate
	Normal
	Rapid
	Ultrarapid
)

var phenotypeNames = map[Phenotype]string{
	Unknown:      "unknown",
	Poor:         "poor",
	Intermediate: "intermediate",
	Normal:       "normal",
	Rapid:        "rapid",
	Ultrarapid:   "ultrarapid",
}

// Phenotypes lists every label in declaration order.
var Phenotypes = []Phenotype{Poor, Intermediate, Normal, Rapid, Ultrarapid, Unknown}

func (p Phenotype) String() string {
	if s, ok := phenotypeNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Phenotype(%d)", int(p))
}

// MarshalText encodes the phenotype as its label.
func (p Phenotype) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a label; unrecognized labels become Unknown.
func (p *Phenotype) UnmarshalText(text []byte) error {
	*p = ParsePhenotype(string(text))
	return nil
}

// ParsePhenotype returns the phenotype for a label, ignoring case.
// Unrecognized labels map to Unknown.
func ParsePhenotype(s string) Phenotype {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range phenotypeNames {
		if name == s {
			return p
		}
	}
	return Unknown
}

// Direction describes how a drug depends on its metabolizing enzyme.
type Direction int

const (
	// Activation drugs are prodrugs; reduced enzyme function lowers efficacy.
	Activation Direction = iota
	// Clearance drugs are inactivated by the enzyme; reduced function raises
	// exposure, which the score reports as a higher value.
	Clearance
)

func (d Direction) String() string {
	switch d {
	case Activation:
		return "activation"
	case Clearance:
		return "clearance"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText encodes the direction as its name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "activation":
		*d = Activation
	case "clearance":
		*d = Clearance
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}
