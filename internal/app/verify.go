package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// Source engine maps start with the "VBSP" ident.
	vbspIdent = []byte("VBSP")

	// GoldSrc maps start with a little-endian version number of 30.
	goldSrcVersion = []byte{30, 0, 0, 0}

	errEmptyMap = errors.New("extracted map is empty")
)

// headerWriter passes writes through while keeping the first bytes for
// verification.
type headerWriter struct {
	w      io.Writer
	header [8]byte
	n      int
}

func (h *headerWriter) Write(p []byte) (int, error) {
	if h.n < len(h.header) {
		h.n += copy(h.header[h.n:], p)
	}
	return h.w.Write(p)
}

func (h *headerWriter) Header() []byte { return h.header[:h.n] }

// verifyMap checks an extracted map. The bzip2 reader already validated the
// stream checksums; strict additionally requires a known BSP header.
func verifyMap(header []byte, size int64, strict bool) error {
	if size == 0 {
		return errEmptyMap
	}
	if !strict {
		return nil
	}
	if bytes.HasPrefix(header, vbspIdent) || bytes.HasPrefix(header, goldSrcVersion) {
		return nil
	}
	return fmt.Errorf("unrecognized map header %q", header)
}
