package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-pgx/internal/pgx"
)

// DrugDoc describes a drug rule.
type DrugDoc struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Gene         pgx.Gene              `json:"gene"`
	Direction    pgx.Direction         `json:"direction"`
	Scores       map[pgx.Phenotype]int `json:"scores"`
	DefaultScore int                   `json:"default_score"`
	RSIDs        []string              `json:"rsids"`
}

// SiteDoc describes one marker site of a gene rule.
type SiteDoc struct {
	RSID  string `json:"rsid"`
	Loss  string `json:"loss_allele,omitempty"`
	Gain  string `json:"gain_allele,omitempty"`
	Label string `json:"label,omitempty"`
}

// GeneDoc describes a gene rule.
type GeneDoc struct {
	Gene  pgx.Gene  `json:"gene"`
	Sites []SiteDoc `json:"sites"`
}

// NewDrugDocs converts drug rules, keeping table order.
func NewDrugDocs(drugs []pgx.DrugRule) []DrugDoc {
	out := make([]DrugDoc, len(drugs))
	for i, d := range drugs {
		out[i] = NewDrugDoc(d)
	}
	return out
}

// NewDrugDoc converts one drug rule.
func NewDrugDoc(d pgx.DrugRule) DrugDoc {
	return DrugDoc{
		Name:         d.Name,
		Description:  d.Description,
		Gene:         d.Gene,
		Direction:    d.Direction,
		Scores:       d.Scores,
		DefaultScore: d.DefaultScore,
		RSIDs:        d.RSIDs(),
	}
}

// NewGeneDocs lists every gene rule in table order.
func NewGeneDocs() []GeneDoc {
	var out []GeneDoc
	for _, g := range pgx.Genes {
		rule, ok := pgx.RuleFor(g)
		if !ok {
			continue
		}
		doc := GeneDoc{Gene: g, Sites: make([]SiteDoc, len(rule.Sites))}
		for i, s := range rule.Sites {
			doc.Sites[i] = SiteDoc{RSID: s.RSID, Loss: s.Loss, Gain: s.Gain, Label: s.Label}
		}
		out = append(out, doc)
	}
	return out
}

// WriteDrugTable writes drug rules as a tab-delimited score table. The
// unknown column shows the default score.
func WriteDrugTable(w io.Writer, drugs []pgx.DrugRule) error {
	bw := bufio.NewWriter(w)

	cols := []string{"#Drug", "Gene", "Direction"}
	for _, p := range pgx.Phenotypes {
		cols = append(cols, p.String())
	}
	if _, err := bw.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
		return err
	}

	for _, d := range drugs {
		row := []string{d.Name, d.Gene.String(), d.Direction.String()}
		for _, p := range pgx.Phenotypes {
			row = append(row, fmt.Sprintf("%d", d.Score(p)))
		}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteGeneTable writes one row per gene rule site.
func WriteGeneTable(w io.Writer, genes []GeneDoc) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#Gene\trsid\tloss_allele\tgain_allele\tlabel\n"); err != nil {
		return err
	}
	for _, g := range genes {
		for _, s := range g.Sites {
			if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\n",
				g.Gene, s.RSID, dash(s.Loss), dash(s.Gain), dash(s.Label)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
