package fs

import (
	"compress/bzip2"
	"context"
	"io"
)

const extractBufSize = 64 << 10

// Bzip2Extractor implements ports.Extractor for .bz2 archives.
type Bzip2Extractor struct{}

// NewBzip2Extractor creates a bzip2 extractor.
func NewBzip2Extractor() *Bzip2Extractor { return &Bzip2Extractor{} }

// Extract decompresses src into dst. The stream checksums are verified by
// the decoder. ctx is checked between chunks.
func (Bzip2Extractor) Extract(ctx context.Context, src io.Reader, dst io.Writer) (int64, error) {
	r := bzip2.NewReader(src)
	buf := make([]byte, extractBufSize)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			m, werr := dst.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if m != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
