// Package table parses 23andMe-style and generic delimited marker tables.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/csimplestring/go-csv/detector"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// Delimiter names reported in Table.Delimiter.
const (
	DelimComma      = ","
	DelimTab        = "\t"
	DelimSemicolon  = ";"
	DelimWhitespace = "whitespace"
)

// detectSampleLines bounds how many data lines feed delimiter detection.
const detectSampleLines = 20

// binarySniffBytes bounds how much input is inspected for binary content.
const binarySniffBytes = 8192

// Table is a tokenized delimited file.
type Table struct {
	Header    []string
	Rows      [][]string
	Delimiter string
	// CommentHeader is true when the header came from a "# rsid ..." comment
	// line, as in 23andMe raw exports.
	CommentHeader bool
}

// Tokenize splits raw file content into a header and rows.
// It returns a *genotype.FormatError when the content is binary, empty, or
// cannot be split into rows and columns.
func Tokenize(data []byte) (*Table, error) {
	if isBinary(data) {
		return nil, &genotype.FormatError{Format: "table", Reason: "binary content"}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")

	var body []string
	commentHeader := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if hasRSIDToken(trimmed) {
				commentHeader = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			}
			continue
		}
		body = append(body, strings.TrimRight(line, "\r"))
	}

	if len(body) == 0 && commentHeader == "" {
		return nil, &genotype.FormatError{Format: "table", Reason: "no rows"}
	}

	sample := body
	if len(sample) > detectSampleLines {
		sample = sample[:detectSampleLines]
	}
	if commentHeader != "" {
		sample = append([]string{commentHeader}, sample...)
	}
	delim := DetectDelimiter(strings.Join(sample, "\n"))

	var records [][]string
	if len(body) > 0 {
		var err error
		records, err = split(body, delim)
		if err != nil {
			return nil, &genotype.FormatError{Format: "table", Reason: err.Error()}
		}
	}

	t := &Table{Delimiter: delim}
	if commentHeader != "" {
		header, err := split([]string{commentHeader}, delim)
		if err != nil || len(header) == 0 {
			return nil, &genotype.FormatError{Format: "table", Reason: "unreadable header comment"}
		}
		t.Header = header[0]
		if len(t.Header) == 1 {
			t.Header = strings.Fields(commentHeader)
		}
		t.Rows = records
		t.CommentHeader = true
	} else {
		t.Header = records[0]
		t.Rows = records[1:]
	}

	if delim == DelimWhitespace {
		foldSurplus(t.Rows, len(t.Header))
	}
	return t, nil
}

// foldSurplus joins the cells past the header width into the last column,
// so whitespace-separated alleles ("rs1 C T") stay one genotype.
func foldSurplus(rows [][]string, width int) {
	if width < 2 {
		return
	}
	for i, row := range rows {
		if len(row) > width {
			last := strings.Join(row[width-1:], "/")
			rows[i] = append(row[:width-1:width-1], last)
		}
	}
}

// DetectDelimiter returns the most likely column delimiter of a text sample:
// comma, tab or semicolon when detected, otherwise whitespace runs.
// "|" is never chosen because it separates phased alleles.
func DetectDelimiter(sample string) string {
	d := detector.New()
	for _, c := range d.DetectDelimiter(strings.NewReader(sample), '"') {
		switch c {
		case DelimComma, DelimTab, DelimSemicolon:
			return c
		}
	}

	// Detection needs consistent counts per line; fall back to whichever
	// delimiter the first line uses.
	first, _, _ := strings.Cut(sample, "\n")
	switch {
	case strings.Contains(first, DelimTab):
		return DelimTab
	case strings.Contains(first, DelimComma):
		return DelimComma
	case strings.Contains(first, DelimSemicolon):
		return DelimSemicolon
	}
	return DelimWhitespace
}

func split(lines []string, delim string) ([][]string, error) {
	if delim == DelimWhitespace {
		records := make([][]string, 0, len(lines))
		for _, line := range lines {
			records = append(records, strings.Fields(line))
		}
		return records, nil
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comma, _ = utf8.DecodeRuneInString(delim)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tokenize rows: %w", err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tokenize rows: no records")
	}
	return records, nil
}

// hasRSIDToken reports whether a comment line names an rsid column.
func hasRSIDToken(line string) bool {
	fields := strings.FieldsFunc(strings.TrimLeft(line, "#"), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
	for _, f := range fields {
		if strings.EqualFold(f, "rsid") {
			return true
		}
	}
	return false
}

// isBinary reports whether data looks like non-text content: any NUL byte or
// a high share of control characters in the leading bytes.
func isBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return true
	}

	control := 0
	for _, b := range sniff {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return len(sniff) > 0 && control*10 > len(sniff)
}
