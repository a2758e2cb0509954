package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/inodb/vibe-pgx/internal/genotype"
	"github.com/inodb/vibe-pgx/internal/table"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

// Format is the detected layout of an input file.
type Format string

const (
	FormatVCF   Format = "vcf"
	FormatTable Format = "table"
)

// ErrTooLarge is returned when decompressed input exceeds the loader limit.
var ErrTooLarge = errors.New("input too large")

// sniffBytes bounds how much decoded content format detection looks at.
const sniffBytes = 512

// Loaded is the outcome of reading one input file.
type Loaded struct {
	Name        string
	Format      Format
	Compression Compression
	Strategy    string // table layout strategy, empty for VCF
	Markers     *genotype.MarkerMap
}

// Loader reads genomic files into marker maps.
type Loader struct {
	maxBytes int64
	logger   *zap.Logger
}

// NewLoader creates a loader without a size limit.
func NewLoader() *Loader {
	return &Loader{logger: zap.NewNop()}
}

// SetMaxBytes limits how many decompressed bytes are read. Zero disables
// the limit.
func (l *Loader) SetMaxBytes(n int64) {
	l.maxBytes = n
}

// SetLogger sets the logger for warning and debug messages.
func (l *Loader) SetLogger(lg *zap.Logger) {
	l.logger = lg
}

// LoadFile reads the file at path ("-" for stdin).
func (l *Loader) LoadFile(path string) (*Loaded, error) {
	if path == "-" {
		return l.Load("stdin", os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	return l.Load(filepath.Base(path), f)
}

// Load reads r, using name only as a format hint. Content that cannot be
// interpreted is reported as a *genotype.FormatError.
func (l *Loader) Load(name string, r io.Reader) (*Loaded, error) {
	dr, comp, err := Decompress(r)
	if err != nil {
		return nil, &genotype.FormatError{Reason: err.Error()}
	}

	if l.maxBytes > 0 {
		dr = io.LimitReader(dr, l.maxBytes+1)
	}
	data, err := io.ReadAll(dr)
	if err != nil {
		if comp != CompressionNone {
			return nil, &genotype.FormatError{Reason: fmt.Sprintf("read %s stream: %v", comp, err)}
		}
		return nil, fmt.Errorf("read input: %w", err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, l.maxBytes)
	}

	data = DecodeText(data)
	format := DetectFormat(name, data)

	out := &Loaded{Name: name, Format: format, Compression: comp}
	switch format {
	case FormatVCF:
		out.Markers, err = vcf.ReadMarkers(bytes.NewReader(data), l.logger)
	default:
		p := table.NewParser()
		p.SetLogger(l.logger)
		out.Markers, out.Strategy, err = p.Parse(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded input",
		zap.String("name", name),
		zap.String("format", string(format)),
		zap.String("compression", comp.String()),
		zap.Int("markers", out.Markers.Len()))

	return out, nil
}

// DecodeText returns data as UTF-8. Content that is not valid UTF-8 is
// decoded as ISO-8859-1, which some spreadsheet exports produce.
func DecodeText(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// DetectFormat picks the parser for a file by extension, then by content.
func DetectFormat(name string, data []byte) Format {
	lower := strings.ToLower(name)
	for _, ext := range []string{".gz", ".bgz", ".bz2", ".xz", ".zip"} {
		lower = strings.TrimSuffix(lower, ext)
	}
	if strings.HasSuffix(lower, ".vcf") {
		return FormatVCF
	}

	head := data
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}
	head = bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")), " \t\r\n")
	if bytes.HasPrefix(head, []byte("##fileformat=VCF")) || bytes.HasPrefix(head, []byte("#CHROM")) {
		return FormatVCF
	}

	return FormatTable
}
