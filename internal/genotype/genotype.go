// Package genotype provides the canonical genotype representation shared by
// the file parsers and the scoring engine.
package genotype

import (
	"strings"
	"unicode"
)

// MissingAllele marks an allele that could not be called (VCF ".").
const MissingAllele = "."

// Genotype is an ordered pair of allele symbols at one marker.
// Alleles may be single bases ("A") or multi-character tokens such as
// indels or repeat notation ("TA6"). A verbatim genotype carries a single
// value that was deliberately left unnormalized.
type Genotype struct {
	alleles  []string
	verbatim bool
}

// Normalize returns the canonical comparable form of a raw genotype token:
// separators ("/", "|") and all whitespace are removed and letters are
// uppercased. Multi-character allele tokens are kept whole.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == '/' || r == '|' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Parse builds a Genotype from a raw token such as "A/G", "g|a", "AG" or
// "TA6/TA7". Separated tokens split on the separator; an unseparated
// two-character token splits into two single-base alleles; anything else is
// kept as one allele.
func Parse(raw string) Genotype {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Genotype{}
	}

	if strings.ContainsAny(raw, "/|") {
		parts := strings.FieldsFunc(raw, func(r rune) bool {
			return r == '/' || r == '|'
		})
		alleles := make([]string, 0, len(parts))
		for _, p := range parts {
			if a := Normalize(p); a != "" {
				alleles = append(alleles, a)
			}
		}
		return Genotype{alleles: alleles}
	}

	norm := Normalize(raw)
	if len(norm) == 2 {
		return Genotype{alleles: []string{norm[:1], norm[1:]}}
	}
	return Genotype{alleles: []string{norm}}
}

// FromAlleles builds a Genotype from already-resolved alleles, in order.
func FromAlleles(alleles ...string) Genotype {
	out := make([]string, 0, len(alleles))
	for _, a := range alleles {
		if a = Normalize(a); a != "" {
			out = append(out, a)
		}
	}
	return Genotype{alleles: out}
}

// Verbatim wraps a value that must not be normalized, such as a cell from a
// non-standard gene/value table.
func Verbatim(value string) Genotype {
	return Genotype{alleles: []string{value}, verbatim: true}
}

// Alleles returns a copy of the allele symbols in call order.
func (g Genotype) Alleles() []string {
	return append([]string(nil), g.alleles...)
}

// IsVerbatim reports whether g holds an unnormalized value.
func (g Genotype) IsVerbatim() bool {
	return g.verbatim
}

// Count returns how many alleles equal allele. Verbatim genotypes never match.
func (g Genotype) Count(allele string) int {
	if g.verbatim || allele == "" {
		return 0
	}
	allele = Normalize(allele)
	n := 0
	for _, a := range g.alleles {
		if a == allele {
			n++
		}
	}
	return n
}

// String returns the canonical concatenated form ("AG", "TA6TA7").
func (g Genotype) String() string {
	return strings.Join(g.alleles, "")
}

// Display returns a separator-joined form when any allele is longer than one
// character, so indel calls stay readable ("AT/A"); otherwise it equals String.
func (g Genotype) Display() string {
	if g.verbatim {
		return g.String()
	}
	for _, a := range g.alleles {
		if len(a) > 1 {
			return strings.Join(g.alleles, "/")
		}
	}
	return g.String()
}

// Equal reports whether two genotypes have the same canonical form.
func (g Genotype) Equal(o Genotype) bool {
	return g.String() == o.String()
}
