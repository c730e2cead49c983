// Package catalog holds the furniture inventory table and resolves free-text
// item names against it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

//go:embed catalog.tsv
var catalogTSV string

// ErrCatalogEmpty is returned when the index has no entries to match against.
var ErrCatalogEmpty = errors.New("catalog is empty")

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// Item is a single inventory entry. Handling and Surcharge are nil when the
// table leaves the column blank.
type Item struct {
	Name      string  `json:"name"`
	Volume    float64 `json:"volume"`
	Weight    float64 `json:"weight"`
	Handling  *string `json:"handling"`
	Surcharge *string `json:"surcharge"`
}

// Key is the item's identity within the index.
func (i Item) Key() string { return normalize(i.Name) }

// Index answers name lookups over a fixed set of items. It is never mutated
// after construction, so concurrent Resolve calls need no locking.
type Index struct {
	items map[string]Item
	keys  []string
	chars map[string][]string
}

// NewIndex builds an index over items. A later item with the same key
// replaces an earlier one.
func NewIndex(items []Item) *Index {
	x := &Index{
		items: make(map[string]Item, len(items)),
		chars: make(map[string][]string, len(items)),
	}
	for _, it := range items {
		k := it.Key()
		if _, seen := x.items[k]; !seen {
			x.keys = append(x.keys, k)
		}
		x.items[k] = it
		x.chars[k] = splitChars(k)
	}
	// Ties in Resolve go to the first key in this order.
	sort.Strings(x.keys)
	return x
}

// Parse reads a tab-separated table with a header row and the columns
// Name, Volume, Weight, Handling, Surcharge.
func Parse(tsv string) (*Index, error) {
	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	if len(lines) == 0 {
		return NewIndex(nil), nil
	}
	items := make([]Item, 0, len(lines)-1)
	for n, raw := range lines[1:] {
		cols := strings.Split(strings.TrimRight(raw, "\r"), "\t")
		if len(cols) < 3 {
			continue
		}
		volume, err := parseNumber(strings.TrimSpace(cols[1]))
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: volume: %w", n+2, err)
		}
		weight, err := parseNumber(nonNumeric.ReplaceAllString(strings.TrimSpace(cols[2]), ""))
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: weight: %w", n+2, err)
		}
		items = append(items, Item{
			Name:      strings.TrimSpace(cols[0]),
			Volume:    volume,
			Weight:    weight,
			Handling:  optionalColumn(cols, 3),
			Surcharge: optionalColumn(cols, 4),
		})
	}
	return NewIndex(items), nil
}

var (
	defaultOnce  sync.Once
	defaultIndex *Index
	defaultErr   error
)

// Default returns the index over the embedded inventory table. It is parsed on
// first use and shared for the life of the process.
func Default() (*Index, error) {
	defaultOnce.Do(func() {
		defaultIndex, defaultErr = Parse(catalogTSV)
		if defaultErr == nil && defaultIndex.Len() == 0 {
			defaultErr = ErrCatalogEmpty
		}
	})
	return defaultIndex, defaultErr
}

// Len reports the number of distinct items.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.keys)
}

// Items returns every item in key order.
func (x *Index) Items() []Item {
	out := make([]Item, 0, len(x.keys))
	for _, k := range x.keys {
		out = append(out, x.items[k])
	}
	return out
}

// Lookup returns the item with exactly this name, ignoring case and
// surrounding whitespace.
func (x *Index) Lookup(name string) (Item, bool) {
	it, ok := x.items[normalize(name)]
	return it, ok
}

// Resolve returns the closest item to query together with a similarity score
// in [0,1]. An exact name scores 1. Otherwise the best-scoring item is
// returned however poor the score; callers decide what counts as too low.
func (x *Index) Resolve(query string) (Item, float64, error) {
	if x.Len() == 0 {
		return Item{}, 0, ErrCatalogEmpty
	}
	key := normalize(query)
	if it, ok := x.items[key]; ok {
		return it, 1.0, nil
	}

	q := splitChars(key)
	m := difflib.NewMatcher(nil, q)
	best, bestScore := "", -1.0
	for _, k := range x.keys {
		m.SetSeq1(x.chars[k])
		if r := m.Ratio(); r > bestScore {
			best, bestScore = k, r
		}
	}
	confidence := difflib.NewMatcher(q, x.chars[best]).Ratio()
	return x.items[best], confidence, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func optionalColumn(cols []string, i int) *string {
	if len(cols) <= i {
		return nil
	}
	v := strings.TrimSpace(cols[i])
	if v == "" {
		return nil
	}
	return &v
}
