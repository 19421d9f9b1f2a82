package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
)

// ZipDecoder decodes zip archives into ordered entry sets, preserving the
// central directory's enumeration order. Deflate streams are inflated
// with the klauspost decompressor.
type ZipDecoder struct {
	// MaxBytes caps the accepted raw archive size. Zero means no cap.
	MaxBytes int64
}

// Decode implements Decoder.
func (d *ZipDecoder) Decode(raw []byte) (*EntrySet, error) {
	if d.MaxBytes > 0 && int64(len(raw)) > d.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrDecode, len(raw), d.MaxBytes)
	}

	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	reader.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	set := NewEntrySet()
	for _, f := range reader.File {
		if strings.HasSuffix(f.Name, "/") {
			set.Add(Entry{Path: f.Name, Dir: true})
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %q: %v", ErrDecode, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %q: %v", ErrDecode, f.Name, err)
		}

		set.Add(Entry{Path: f.Name, Content: string(content)})
	}
	return set, nil
}
