// Package input turns uploaded genomic files into marker maps: it sniffs
// compression and text encoding, picks the VCF or table parser, and runs it.
package input

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// Compression identifies a compressed container.
type Compression byte

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZ
	CompressionBZip2
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZip:
		return "zip"
	case CompressionXZ:
		return "xz"
	case CompressionZ:
		return "zlib"
	case CompressionBZip2:
		return "bzip2"
	}
	return "none"
}

// Magic byte signatures, checked in this order.
var compressionSigs = []struct {
	c   Compression
	sig []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b, 0x08}},
	{CompressionZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{CompressionZ, []byte{0x78, 0x9c}},
	{CompressionBZip2, []byte{0x42, 0x5a, 0x68}},
}

// DetectCompression matches the leading bytes of a stream against known
// container signatures.
func DetectCompression(head []byte) Compression {
	for _, s := range compressionSigs {
		if bytes.HasPrefix(head, s.sig) {
			return s.c
		}
	}
	return CompressionNone
}

// Decompress wraps r in the matching decompressor. Uncompressed input is
// returned buffered but otherwise unchanged. For zip archives the first
// entry is read.
func Decompress(r io.Reader) (io.Reader, Compression, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, CompressionNone, fmt.Errorf("peek input: %w", err)
	}

	c := DetectCompression(head)
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, c, nil
	case CompressionZip:
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, c, fmt.Errorf("open zip entry: %w", err)
		}
		return zr, c, nil
	case CompressionXZ:
		xr, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, c, fmt.Errorf("create xz reader: %w", err)
		}
		return xr, c, nil
	case CompressionZ:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("create zlib reader: %w", err)
		}
		return zr, c, nil
	case CompressionBZip2:
		return bzip2.NewReader(br), c, nil
	}

	return br, CompressionNone, nil
}
