package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"movequote/internal/catalog"
)

// Normalizer maps caller-supplied item lists into an order.
type Normalizer interface {
	Normalize(raw json.RawMessage) (catalog.Order, error)
}

var (
	// ErrMissingItemName is returned when an item entry has no usable name.
	ErrMissingItemName = errors.New("missing item name")
	// ErrBadQuantity is returned when a quantity is not a whole number.
	ErrBadQuantity = errors.New("quantity must be a whole number")
)

// NewNormalizer returns the default normalizer.
func NewNormalizer() Normalizer { return &DefaultNormalizer{} }

// DefaultNormalizer accepts a name→quantity object (key order kept) or an
// array whose entries are bare names or objects using any of the common key
// spellings for name and quantity. A missing quantity means one.
type DefaultNormalizer struct{}

func (n *DefaultNormalizer) Normalize(raw json.RawMessage) (catalog.Order, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '{':
		var o catalog.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, err
		}
		return o, nil
	case '[':
		var rows []any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, err
		}
		order := make(catalog.Order, 0, len(rows))
		for i, row := range rows {
			line, err := normalizeLine(row)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
			order = append(order, line)
		}
		return order, nil
	default:
		return nil, errors.New("items must be an object or an array")
	}
}

func normalizeLine(row any) (catalog.OrderLine, error) {
	switch v := row.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return catalog.OrderLine{}, ErrMissingItemName
		}
		return catalog.OrderLine{Name: v, Quantity: 1}, nil
	case map[string]any:
		name := getString(v, []string{"name", "item", "item_name", "description", "item.name"})
		if strings.TrimSpace(name) == "" {
			return catalog.OrderLine{}, ErrMissingItemName
		}
		qty := 1
		if q := getAny(v, []string{"quantity", "qty", "count", "item.quantity"}); q != nil {
			n, ok := toInt(q)
			if !ok {
				return catalog.OrderLine{}, ErrBadQuantity
			}
			qty = n
		}
		return catalog.OrderLine{Name: name, Quantity: qty}, nil
	default:
		return catalog.OrderLine{}, ErrMissingItemName
	}
}

// getString returns the first non-empty string from the candidate keys.
// Supports dot-path navigation for nested maps.
func getString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v := getPath(m, k); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// getAny returns the first non-nil value from the candidate keys.
func getAny(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v := getPath(m, k); v != nil {
			return v
		}
	}
	return nil
}

// getPath navigates a dot-separated key into nested maps.
func getPath(m map[string]any, path string) any {
	var cur any = m
	for _, p := range strings.Split(path, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := mm[p]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	default:
		return 0, false
	}
}
