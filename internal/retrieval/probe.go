package retrieval

import (
	"fmt"
	"regexp"
	"strings"
)

// Probe is an exact-lookup request recognized inside free-form query text:
// a metadata field plus the identifier value to match.
type Probe struct {
	Field string
	Value string
}

// containerPattern matches container codes: a known carrier prefix followed
// by at least six alphanumerics.
const containerPattern = `\b(?:MSMU|BMOU|TGHU|CAIU|MSCU|OOLU|TEMU)[A-Z0-9]{6,}\b`

// ProbeTable maps metadata fields to the patterns that recognize their
// values in query text. Detection runs in insertion order and stops at the
// first field whose pattern matches.
type ProbeTable struct {
	entries []probeEntry
}

type probeEntry struct {
	field string
	re    *regexp.Regexp
}

func NewProbeTable() *ProbeTable {
	return &ProbeTable{}
}

// DefaultProbeTable recognizes container codes only.
func DefaultProbeTable() *ProbeTable {
	t := NewProbeTable()
	if err := t.Add("contenedor", containerPattern); err != nil {
		panic(err)
	}
	return t
}

// Add registers a case-insensitive pattern for a field.
func (t *ProbeTable) Add(field, pattern string) error {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return fmt.Errorf("probe pattern for %s: %w", field, err)
	}
	t.entries = append(t.entries, probeEntry{field: field, re: re})
	return nil
}

// Detect scans the query for the first recognizable identifier. The value
// is upper-cased to mirror how identifier metadata is stored at ingestion.
func (t *ProbeTable) Detect(query string) (Probe, bool) {
	for _, e := range t.entries {
		if m := e.re.FindString(query); m != "" {
			return Probe{Field: e.field, Value: strings.ToUpper(m)}, true
		}
	}
	return Probe{}, false
}
