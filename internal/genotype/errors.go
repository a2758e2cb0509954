package genotype

import "fmt"

// FormatError reports input that cannot be interpreted as any supported
// genomic layout. It is a hard failure: no scoring happens after it.
type FormatError struct {
	Format string // "table", "vcf", or "" when undetermined
	Reason string
}

func (e *FormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("unrecognized genomic file: %s", e.Reason)
	}
	return fmt.Sprintf("unrecognized %s file: %s", e.Format, e.Reason)
}
