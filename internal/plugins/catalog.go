package plugins

import (
	"sort"

	"github.com/xab-mack/solhunt/internal/model"
)

// Entry describes one finding a module can report.
type Entry struct {
	Summary     string
	Description string
	Severity    model.Severity
	References  []string
}

// Catalog maps finding codes to their fixed description. It is built once
// per module and never mutated.
type Catalog struct {
	entries map[int]Entry
	codes   []int
}

func NewCatalog(entries map[int]Entry) Catalog {
	c := Catalog{entries: make(map[int]Entry, len(entries))}
	for code, e := range entries {
		e.References = append([]string(nil), e.References...)
		c.entries[code] = e
		c.codes = append(c.codes, code)
	}
	sort.Ints(c.codes)
	return c
}

func (c Catalog) Lookup(code int) (Entry, bool) {
	e, ok := c.entries[code]
	return e, ok
}

// Codes returns the catalog keys in ascending order.
func (c Catalog) Codes() []int { return append([]int(nil), c.codes...) }

func (c Catalog) Len() int { return len(c.codes) }
