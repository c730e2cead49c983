package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OrderLine is one requested item as the caller named it.
type OrderLine struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Quantity int    `json:"quantity" yaml:"quantity" validate:"gte=0"`
}

// Order is a list of requested items in the order the caller gave them. It
// decodes from either a name→quantity mapping or a list of lines; mapping
// keys keep their document order.
type Order []OrderLine

func (o *Order) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if data[0] == '[' {
		var lines []OrderLine
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		*o = lines
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("order: expected object or array, got %v", tok)
	}
	lines := Order{}
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var qty int
		if err := dec.Decode(&qty); err != nil {
			return fmt.Errorf("order: quantity for %q: %w", name, err)
		}
		lines = lines.set(seen, name, qty)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = lines
	return nil
}

func (o *Order) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		lines := make(Order, 0, len(value.Content)/2)
		seen := map[string]int{}
		for i := 0; i+1 < len(value.Content); i += 2 {
			name := value.Content[i].Value
			var qty int
			if err := value.Content[i+1].Decode(&qty); err != nil {
				return fmt.Errorf("order: quantity for %q: %w", name, err)
			}
			lines = lines.set(seen, name, qty)
		}
		*o = lines
	case yaml.SequenceNode:
		var lines []OrderLine
		if err := value.Decode(&lines); err != nil {
			return err
		}
		*o = lines
	default:
		return fmt.Errorf("order: expected mapping or sequence at line %d", value.Line)
	}
	return nil
}

// set adds a mapping entry. A repeated key keeps its first position and takes
// the later quantity.
func (o Order) set(seen map[string]int, name string, qty int) Order {
	if i, ok := seen[name]; ok {
		o[i].Quantity = qty
		return o
	}
	seen[name] = len(o)
	return append(o, OrderLine{Name: name, Quantity: qty})
}
