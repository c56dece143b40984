// Package testutil provides shared fixtures for tests: bzip2-compressed map
// payloads and an in-process FastDL server.
package testutil

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Map payloads and their bzip2 encodings. The standard library has no bzip2
// writer, so the compressed forms are committed as hex.
var (
	SourceMap    = []byte("VBSP\x14\x00\x00\x00test map payload\n")
	SourceMapBZ2 = mustHex("425a6839314159265359641506870000057780401004004000100049002606cc202000314d323131310a34d346d41b4896a3b18003c437753e2a864afc5dc914e1424190541a1c")

	GoldSrcMap    = []byte("\x1e\x00\x00\x00goldsrc map\n")
	GoldSrcMapBZ2 = mustHex("425a68393141592653592cf66ece00000271804010000140002c86d800200022993131904000054e0f45910688ccd1772453850902cf66ece0")

	PlainText    = []byte("not a map at all\n")
	PlainTextBZ2 = mustHex("425a6839314159265359764618390000065180001040002007c400200031064c40d34d3468a08d8d2d5ef287c5dc914e14241d91860e40")

	// EmptyBZ2 is a valid stream that decompresses to nothing.
	EmptyBZ2 = mustHex("425a683917724538509000000000")
)

// CorruptBZ2 returns SourceMapBZ2 with a damaged block, which fails the
// stream checksum.
func CorruptBZ2() []byte {
	b := append([]byte(nil), SourceMapBZ2...)
	b[len(b)/2] ^= 0xff
	return b
}

// TruncatedBZ2 returns the first half of SourceMapBZ2.
func TruncatedBZ2() []byte {
	return append([]byte(nil), SourceMapBZ2[:len(SourceMapBZ2)/2]...)
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// FastDL is an in-process FastDL host serving a directory listing at
// /maps/ and files below it.
type FastDL struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	listing  string
	requests []string
}

// StartFastDL starts a server for files (name to body). When listing is
// empty an Apache-style HTML index of the file names is generated.
// The server is closed when the test ends.
func StartFastDL(t *testing.T, files map[string][]byte, listing string) *FastDL {
	t.Helper()

	f := &FastDL{files: files, listing: listing}
	if f.listing == "" {
		f.listing = ApacheIndex(names(files)...)
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// BaseURL returns the listing URL, with a trailing slash.
func (f *FastDL) BaseURL() string { return f.URL + "/maps/" }

// Requests returns the paths requested so far, in order.
func (f *FastDL) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *FastDL) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path)
	f.mu.Unlock()

	if r.URL.Path == "/maps/" || r.URL.Path == "/maps" {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, f.listing)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/maps/")
	data, ok := f.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/x-bzip2")
	w.Write(data)
}

// ApacheIndex renders an Apache mod_autoindex style page linking names.
func ApacheIndex(names ...string) string {
	var b strings.Builder
	b.WriteString("<html>\n<head><title>Index of /maps</title></head>\n<body>\n<h1>Index of /maps</h1>\n<table>\n")
	b.WriteString(`<tr><td><a href="/">Parent Directory</a></td></tr>` + "\n")
	for _, n := range names {
		fmt.Fprintf(&b, "<tr><td><a href=\"%s\">%s</a></td><td align=\"right\">2024-01-01 12:00  </td><td align=\"right\">1.2M</td></tr>\n", n, n)
	}
	b.WriteString("</table>\n</body></html>\n")
	return b.String()
}

func names(files map[string][]byte) []string {
	out := make([]string, 0, len(files))
	for n := range files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
