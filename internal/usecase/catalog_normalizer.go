package usecase

import (
	"iter"

	"github.com/concierge/backend/internal/domain"
)

// CatalogNormalizer flattens catalog entries into (service, store, item) triples
type CatalogNormalizer struct{}

// NewCatalogNormalizer creates a new catalog normalizer
func NewCatalogNormalizer() *CatalogNormalizer {
	return &CatalogNormalizer{}
}

// Normalize lazily yields one CatalogItem per item found in the entries.
// Entries are never modified; the category label travels in the triple.
func (n *CatalogNormalizer) Normalize(entries []domain.CatalogEntry) iter.Seq[domain.CatalogItem] {
	return func(yield func(domain.CatalogItem) bool) {
		for _, entry := range entries {
			if !yieldEntry(entry, yield) {
				return
			}
		}
	}
}

// Collect drains Normalize into a slice
func (n *CatalogNormalizer) Collect(entries []domain.CatalogEntry) []domain.CatalogItem {
	var items []domain.CatalogItem
	for item := range n.Normalize(entries) {
		items = append(items, item)
	}
	return items
}

// yieldEntry emits the triples of one entry and reports whether the consumer wants more
func yieldEntry(entry domain.CatalogEntry, yield func(domain.CatalogItem) bool) bool {
	switch entry.Shape {
	case domain.ShapeSingleItem, domain.ShapeMixedRecord:
		return yield(domain.CatalogItem{
			Service: entry.Service,
			Store:   entry.StoreOrDefault(),
			Item:    domain.ItemFromNode(entry.Data),
		})

	case domain.ShapeCategoryMap:
		for _, category := range entry.Data.Keys() {
			value, _ := entry.Data.Get(category)
			if value.IsMap() {
				if !yieldRecord(entry.Service, category, category, value, yield) {
					return false
				}
				continue
			}
			for _, element := range value.Items() {
				if !yieldRecord(entry.Service, category, category, element, yield) {
					return false
				}
			}
		}
		return true

	case domain.ShapeItemList:
		for _, element := range entry.Data.Items() {
			if !yieldRecord(entry.Service, entry.StoreOrDefault(), "", element, yield) {
				return false
			}
		}
		return true

	default:
		return true
	}
}

// yieldRecord emits a record element; non-record elements are skipped
func yieldRecord(service, store, category string, record domain.Node, yield func(domain.CatalogItem) bool) bool {
	if !record.IsMap() {
		return true
	}
	return yield(domain.CatalogItem{
		Service:  service,
		Store:    store,
		Category: category,
		Item:     domain.ItemFromNode(record),
	})
}
