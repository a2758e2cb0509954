// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"strconv"
	"strings"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom  string // Chromosome name (e.g., "10", "chr10")
	Pos    int64  // 1-based genomic position
	ID     string // Variant identifier(s), e.g. "rs4244285" or "rs1;rs2"
	Ref    string // Reference allele
	Alt    string // Comma-separated alternate alleles
	Format string // FORMAT column, empty when absent
	Sample string // First sample column, empty when absent
}

// AltAlleles returns the ALT column split on ",".
func (v *Variant) AltAlleles() []string {
	if v.Alt == "" {
		return nil
	}
	return strings.Split(v.Alt, ",")
}

// RSIDs returns the rs-prefixed identifiers in the ID column.
// Multiple identifiers may be joined with ";".
func (v *Variant) RSIDs() []string {
	var ids []string
	for _, id := range strings.Split(v.ID, ";") {
		id = strings.TrimSpace(id)
		if genotype.IsRSID(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Genotype resolves the first sample's call. When the record has no usable
// GT subfield, it approximates a heterozygous call from REF and the first
// ALT allele.
func (v *Variant) Genotype() genotype.Genotype {
	if g, ok := v.SampleGenotype(); ok {
		return g
	}

	alts := v.AltAlleles()
	if v.Ref == "" || len(alts) == 0 {
		return genotype.Genotype{}
	}
	return genotype.FromAlleles(v.Ref, alts[0])
}

// SampleGenotype resolves the GT subfield of the first sample.
// Allele index 0 maps to REF, n maps to the n-th ALT allele, and "." or an
// index outside the ALT list maps to genotype.MissingAllele. Alleles keep
// the order of the GT tokens.
func (v *Variant) SampleGenotype() (genotype.Genotype, bool) {
	if v.Format == "" || v.Sample == "" {
		return genotype.Genotype{}, false
	}

	gtIndex := -1
	for i, key := range strings.Split(v.Format, ":") {
		if key == "GT" {
			gtIndex = i
			break
		}
	}
	if gtIndex < 0 {
		return genotype.Genotype{}, false
	}

	values := strings.Split(v.Sample, ":")
	if gtIndex >= len(values) {
		return genotype.Genotype{}, false
	}

	tokens := strings.FieldsFunc(values[gtIndex], func(r rune) bool {
		return r == '/' || r == '|'
	})
	if len(tokens) == 0 {
		return genotype.Genotype{}, false
	}

	alts := v.AltAlleles()
	alleles := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		alleles = append(alleles, resolveAllele(tok, v.Ref, alts))
	}
	return genotype.FromAlleles(alleles...), true
}

func resolveAllele(token, ref string, alts []string) string {
	if token == "0" {
		return ref
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > len(alts) {
		return genotype.MissingAllele
	}
	return alts[n-1]
}
