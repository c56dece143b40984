package index

import (
	"net/url"
	"strings"

	"github.com/nide-gg/mapsync/internal/domain"
)

// Entry is a single reference found in a listing line.
type Entry struct {
	// Raw is the text the name was taken from (attribute value or token).
	Raw string

	// Name is the file name after stripping any path prefix.
	Name string

	// Valid reports whether Name passed validation.
	Valid bool
}

// Result is the outcome of parsing one listing body.
type Result struct {
	// Names holds valid archive names in first-seen order, with
	// case-insensitive duplicates removed.
	Names []string

	// Lines is the number of lines that mentioned the suffix.
	Lines int

	// Rejected counts candidates that failed validation or lines that
	// yielded no candidate at all. Informational only.
	Rejected int

	// Duplicates counts valid names dropped as case-insensitive repeats.
	Duplicates int
}

// Parser extracts archive names with a fixed suffix from listing bodies.
type Parser struct {
	suffix string
}

// NewParser creates a parser for the given suffix, e.g. ".bsp.bz2".
func NewParser(suffix string) *Parser {
	return &Parser{suffix: suffix}
}

// NewMapParser creates a parser for compressed map archives.
func NewMapParser() *Parser {
	return NewParser(domain.ArchiveSuffix)
}

// Suffix returns the suffix the parser matches.
func (p *Parser) Suffix() string { return p.suffix }

// Parse scans body and returns the de-duplicated archive names.
func (p *Parser) Parse(body string) Result {
	var res Result
	seen := make(map[string]struct{})

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, p.suffix) {
			continue
		}
		res.Lines++

		e, ok := p.ParseLine(line)
		if !ok || !e.Valid {
			res.Rejected++
			continue
		}

		key := strings.ToLower(e.Name)
		if _, dup := seen[key]; dup {
			res.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		res.Names = append(res.Names, e.Name)
	}

	return res
}

// ParseLine extracts the first candidate from a single line. The second
// result is false when the line yields no candidate at all.
func (p *Parser) ParseLine(line string) (Entry, bool) {
	if hasHref(line) {
		return p.fromAnchor(line)
	}
	return p.fromBareToken(line)
}

// fromAnchor takes the first quoted href value that mentions the suffix.
// An unterminated quote ends the scan for the line.
func (p *Parser) fromAnchor(line string) (Entry, bool) {
	rest := line
	for {
		i := indexFold(rest, "href=")
		if i < 0 {
			return Entry{}, false
		}
		rest = rest[i+len("href="):]
		if rest == "" {
			return Entry{}, false
		}

		quote := rest[0]
		if quote != '"' && quote != '\'' {
			continue
		}
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return Entry{}, false
		}
		raw := rest[1 : 1+end]
		rest = rest[1+end+1:]

		if !strings.Contains(raw, p.suffix) {
			continue
		}

		// Split on the raw path so an encoded %2F stays inside the name.
		name := baseName(trimQuery(raw))
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		if !strings.Contains(name, p.suffix) {
			return Entry{Raw: raw, Name: name}, true
		}
		return Entry{Raw: raw, Name: name, Valid: p.Valid(name)}, true
	}
}

// fromBareToken walks back from the first suffix occurrence to the nearest
// whitespace and takes that token.
func (p *Parser) fromBareToken(line string) (Entry, bool) {
	i := strings.Index(line, p.suffix)
	if i < 0 {
		return Entry{}, false
	}
	end := i + len(p.suffix)
	start := strings.LastIndexAny(line[:i], " \t\v\f") + 1
	raw := line[start:end]

	if strings.ContainsAny(raw, "<>") {
		return Entry{Raw: raw}, true
	}

	name := baseName(raw)
	return Entry{Raw: raw, Name: name, Valid: p.Valid(name)}, true
}

// Valid reports whether name is a usable archive name: it ends with exactly
// the suffix and the identifier before it is non-empty and safe to use as a
// file name.
func (p *Parser) Valid(name string) bool {
	if !strings.HasSuffix(name, p.suffix) {
		return false
	}
	id := strings.TrimSuffix(name, p.suffix)
	return ValidIdentifier(id)
}

// ValidIdentifier reports whether id can be used as a map file name on any
// platform the game runs on.
func ValidIdentifier(id string) bool {
	if id == "" || strings.Trim(id, ".") == "" {
		return false
	}
	if strings.TrimSpace(id) != id {
		return false
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return false
		}
		switch r {
		case '<', '>', '&', ':', '"', '/', '\\', '|', '?', '*':
			return false
		}
	}
	return true
}

func hasHref(line string) bool {
	return indexFold(line, "href=") >= 0
}

// indexFold is strings.Index for an ASCII needle, ignoring case.
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}

func trimQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

func baseName(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
