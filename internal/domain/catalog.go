package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// StoreNotAvailable is the sentinel store label for entries without a store.
const StoreNotAvailable = "N/A"

// PriceNotAvailable is the sentinel price for items that carry no price.
const PriceNotAvailable = "N/A"

// NodeKind identifies the structural kind of a catalog document node
type NodeKind int

const (
	KindNull NodeKind = iota
	KindScalar
	KindMap
	KindList
)

// Node is an immutable, ordered view over one value of the catalog document.
// Map keys keep their document order.
type Node struct {
	kind   NodeKind
	value  any
	keys   []string
	fields map[string]Node
	items  []Node
}

// Field is one key/value pair of a map node
type Field struct {
	Key   string
	Value Node
}

// NullNode returns a node representing an absent or null value
func NullNode() Node {
	return Node{kind: KindNull}
}

// ScalarNode wraps a string, number or boolean
func ScalarNode(v any) Node {
	if v == nil {
		return NullNode()
	}
	return Node{kind: KindScalar, value: v}
}

// MapNode builds a map node from fields in the given order. A repeated key
// keeps its first position and its last value.
func MapNode(fields ...Field) Node {
	n := Node{
		kind:   KindMap,
		keys:   make([]string, 0, len(fields)),
		fields: make(map[string]Node, len(fields)),
	}
	for _, f := range fields {
		if _, exists := n.fields[f.Key]; !exists {
			n.keys = append(n.keys, f.Key)
		}
		n.fields[f.Key] = f.Value
	}
	return n
}

// ListNode builds a list node
func ListNode(items ...Node) Node {
	return Node{kind: KindList, items: slices.Clone(items)}
}

// Kind returns the structural kind of the node
func (n Node) Kind() NodeKind { return n.kind }

// IsMap reports whether the node is a mapping
func (n Node) IsMap() bool { return n.kind == KindMap }

// IsList reports whether the node is a sequence
func (n Node) IsList() bool { return n.kind == KindList }

// IsScalar reports whether the node is a scalar
func (n Node) IsScalar() bool { return n.kind == KindScalar }

// Has reports whether a map node carries the key
func (n Node) Has(key string) bool {
	if n.kind != KindMap {
		return false
	}
	_, ok := n.fields[key]
	return ok
}

// Get returns the value stored under key in a map node
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindMap {
		return NullNode(), false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Keys returns the map keys in document order
func (n Node) Keys() []string {
	return slices.Clone(n.keys)
}

// Items returns the elements of a list node
func (n Node) Items() []Node {
	return slices.Clone(n.items)
}

// Len returns the number of keys or elements
func (n Node) Len() int {
	switch n.kind {
	case KindMap:
		return len(n.keys)
	case KindList:
		return len(n.items)
	default:
		return 0
	}
}

// Value returns the scalar value untouched, or nil for non-scalars
func (n Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.value
}

// Text returns the string form of a scalar node, "" otherwise
func (n Node) Text() string {
	if n.kind != KindScalar {
		return ""
	}
	switch v := n.value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Interface converts the node into plain Go values (map[string]any, []any, scalars)
func (n Node) Interface() any {
	switch n.kind {
	case KindScalar:
		return n.value
	case KindMap:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].Interface()
		}
		return out
	case KindList:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// ContainerShape is the classification of an entry's data container
type ContainerShape int

const (
	ShapeUnrecognized ContainerShape = iota
	ShapeSingleItem
	ShapeCategoryMap
	ShapeItemList
	// ShapeMixedRecord is a mapping without a name key where at least one
	// category holds something other than a list or an item record. The whole
	// mapping is read as one item.
	ShapeMixedRecord
)

func (s ContainerShape) String() string {
	switch s {
	case ShapeSingleItem:
		return "single_item"
	case ShapeCategoryMap:
		return "category_map"
	case ShapeItemList:
		return "item_list"
	case ShapeMixedRecord:
		return "mixed_record"
	default:
		return "unrecognized"
	}
}

// ClassifyContainer derives the shape of a data container from its structure.
// Priority: single item > category map > list.
func ClassifyContainer(data Node) ContainerShape {
	switch data.Kind() {
	case KindMap:
		if data.Has("name") {
			return ShapeSingleItem
		}
		for _, key := range data.keys {
			value := data.fields[key]
			if value.IsList() {
				continue
			}
			if value.IsMap() && value.Has("name") {
				continue
			}
			return ShapeMixedRecord
		}
		return ShapeCategoryMap
	case KindList:
		return ShapeItemList
	default:
		return ShapeUnrecognized
	}
}

// Item is one catalog offering
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       any    `json:"price"`
}

// ItemFromNode reads an item record, applying the defaults for missing fields.
// A missing name yields an empty Name.
func ItemFromNode(n Node) Item {
	item := Item{Price: PriceNotAvailable}
	if v, ok := n.Get("name"); ok {
		item.Name = v.Text()
	}
	if v, ok := n.Get("description"); ok {
		item.Description = v.Text()
	}
	if v, ok := n.Get("price"); ok && v.Kind() != KindNull {
		item.Price = v.Interface()
	}
	return item
}

// CatalogEntry is one top-level catalog record
type CatalogEntry struct {
	Service  string
	Store    string
	HasStore bool
	Data     Node
	Shape    ContainerShape
}

// NewCatalogEntry builds an entry and classifies its data container
func NewCatalogEntry(service string, store *string, data Node) CatalogEntry {
	entry := CatalogEntry{
		Service: service,
		Data:    data,
		Shape:   ClassifyContainer(data),
	}
	if store != nil {
		entry.Store = *store
		entry.HasStore = true
	}
	return entry
}

// StoreOrDefault returns the entry store, or "N/A" when the entry has none
func (e CatalogEntry) StoreOrDefault() string {
	if !e.HasStore {
		return StoreNotAvailable
	}
	return e.Store
}

// CatalogItem is a flattened (service, store, item) triple
type CatalogItem struct {
	Service  string
	Store    string
	Category string
	Item     Item
}

// Catalog is the read-only set of entries loaded at startup
type Catalog struct {
	entries []CatalogEntry
}

// NewCatalog creates a catalog holding a private copy of entries
func NewCatalog(entries []CatalogEntry) *Catalog {
	return &Catalog{entries: slices.Clone(entries)}
}

// EmptyCatalog returns a catalog with no entries
func EmptyCatalog() *Catalog {
	return &Catalog{}
}

// Entries returns the catalog entries
func (c *Catalog) Entries() []CatalogEntry {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries)
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
