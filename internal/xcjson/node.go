// Package xcjson reads the JSON dialect produced by xcresulttool.
//
// Every scalar is wrapped as {"_value": ...}, every array as {"_values": [...]}, and type tags live at
// "_type._name". Accessors never fail: a missing key reads as absent.
package xcjson

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/farcloser/primordium/fault"
	"github.com/tidwall/gjson"
)

const (
	value    = "_value"
	values   = "_values"
	typeName = "_type._name"
	refID    = "id._value"
)

var errNotADocument = errors.New("not a json document")

// Node is a read-only view over one object of an xcresulttool document.
type Node struct {
	raw gjson.Result
}

// Parse validates and wraps a raw document.
func Parse(data []byte) (Node, error) {
	if !gjson.ValidBytes(data) {
		return Node{}, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, errNotADocument)
	}

	return Node{raw: gjson.ParseBytes(data)}, nil
}

// Exists reports whether the node is present in its parent.
func (n Node) Exists() bool {
	return n.raw.Exists()
}

// Has reports whether key is present on the node.
func (n Node) Has(key string) bool {
	return n.raw.Get(key).Exists()
}

// Get returns the child object at key. The result may not exist.
func (n Node) Get(key string) Node {
	return Node{raw: n.raw.Get(key)}
}

// Value returns the node's own wrapped scalar.
func (n Node) Value() (string, bool) {
	v := n.raw.Get(value)
	if !v.Exists() {
		return "", false
	}

	return v.String(), true
}

// String returns the wrapped scalar stored at key.
func (n Node) String(key string) (string, bool) {
	return n.Get(key).Value()
}

// Float returns the wrapped scalar stored at key as a number. Non numeric values read as absent.
func (n Node) Float(key string) (float64, bool) {
	raw, ok := n.String(key)
	if !ok {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}

// Values returns the wrapped array stored at key, in document order.
func (n Node) Values(key string) []Node {
	items := n.raw.Get(key + "." + values)
	if !items.IsArray() {
		return nil
	}

	array := items.Array()
	nodes := make([]Node, 0, len(array))

	for _, item := range array {
		nodes = append(nodes, Node{raw: item})
	}

	return nodes
}

// Ref returns the reference identifier stored at key (key.id._value).
func (n Node) Ref(key string) (string, bool) {
	id := n.raw.Get(key + "." + refID)
	if !id.Exists() {
		return "", false
	}

	return id.String(), true
}

// TypeName returns the "_type._name" tag, or an empty string.
func (n Node) TypeName() string {
	return n.raw.Get(typeName).String()
}

// Raw returns the node's JSON text.
func (n Node) Raw() string {
	return n.raw.Raw
}
