package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/concierge/backend/internal/domain"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Loader reads the catalog document once at startup
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a new catalog loader
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger.With().Str("component", "catalog").Logger()}
}

// Load reads the catalog at path. A missing file yields an empty catalog.
func (l *Loader) Load(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn().Str("path", path).Msg("catalog file not found, starting with empty catalog")
			return domain.EmptyCatalog(), nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnreadable, err)
	}

	catalog, err := l.Parse(data)
	if err != nil {
		return nil, err
	}

	l.logger.Info().Str("path", path).Int("entries", catalog.Len()).Msg("catalog loaded")
	return catalog, nil
}

// Parse decodes a JSON or YAML catalog document keeping key order.
// The document must be a sequence of entries; entries without a service are skipped.
func (l *Loader) Parse(data []byte) (*domain.Catalog, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return domain.EmptyCatalog(), nil
	}

	// JSON escapes such as \/ and surrogate pairs are not valid YAML
	if trimmed[0] == '[' || trimmed[0] == '{' {
		catalog, err := l.parseJSON(trimmed)
		if err == nil {
			return catalog, nil
		}
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return nil, err
		}
		// flow-style YAML also starts with a bracket
		if catalog, yamlErr := l.parseYAML(trimmed); yamlErr == nil {
			return catalog, nil
		}
		return nil, err
	}

	return l.parseYAML(data)
}

// parseJSON walks the decoder tokens so object keys keep their document order
func (l *Loader) parseJSON(data []byte) (*domain.Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnreadable, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: top level must be a list of entries", domain.ErrCatalogUnreadable)
	}

	var entries []domain.CatalogEntry
	for i := 0; dec.More(); i++ {
		offset := dec.InputOffset()
		record, err := decodeJSONValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrCatalogUnreadable, i, err)
		}

		entry, ok := toEntry(record)
		if !ok {
			l.logger.Warn().Int("index", i).Int64("offset", offset).Msg("skipping catalog entry without service")
			continue
		}
		entries = append(entries, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnreadable, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the entry list", domain.ErrCatalogUnreadable)
	}

	return domain.NewCatalog(entries), nil
}

// parseYAML decodes a YAML document through yaml.Node
func (l *Loader) parseYAML(data []byte) (*domain.Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnreadable, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return domain.EmptyCatalog(), nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: top level must be a list of entries", domain.ErrCatalogUnreadable)
	}

	entries := make([]domain.CatalogEntry, 0, len(root.Content))
	for i, raw := range root.Content {
		record, err := convertNode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrCatalogUnreadable, i, err)
		}

		entry, ok := toEntry(record)
		if !ok {
			l.logger.Warn().Int("index", i).Int("line", raw.Line).Msg("skipping catalog entry without service")
			continue
		}
		entries = append(entries, entry)
	}

	return domain.NewCatalog(entries), nil
}

// toEntry reads the service, store and data fields of one record
func toEntry(record domain.Node) (domain.CatalogEntry, bool) {
	service, ok := record.Get("service")
	if !ok || !service.IsScalar() || strings.TrimSpace(service.Text()) == "" {
		return domain.CatalogEntry{}, false
	}

	var store *string
	if v, ok := record.Get("store"); ok && v.IsScalar() {
		text := v.Text()
		store = &text
	}

	data, _ := record.Get("data")
	return domain.NewCatalogEntry(service.Text(), store, data), true
}

// convertNode maps a yaml node onto the domain document tree
func convertNode(n *yaml.Node) (domain.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return domain.NullNode(), nil
		}
		return convertNode(n.Content[0])

	case yaml.AliasNode:
		return convertNode(n.Alias)

	case yaml.MappingNode:
		fields := make([]domain.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := convertNode(n.Content[i+1])
			if err != nil {
				return domain.Node{}, err
			}
			fields = append(fields, domain.Field{Key: n.Content[i].Value, Value: value})
		}
		return domain.MapNode(fields...), nil

	case yaml.SequenceNode:
		items := make([]domain.Node, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := convertNode(child)
			if err != nil {
				return domain.Node{}, err
			}
			items = append(items, item)
		}
		return domain.ListNode(items...), nil

	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return domain.NullNode(), nil
		}
		var value any
		if err := n.Decode(&value); err != nil {
			return domain.Node{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return domain.ScalarNode(value), nil

	default:
		return domain.NullNode(), nil
	}
}

// decodeJSONValue reads the next complete value from the decoder
func decodeJSONValue(dec *json.Decoder) (domain.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.Node{}, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			var fields []domain.Field
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return domain.Node{}, err
				}
				key, _ := keyTok.(string)
				value, err := decodeJSONValue(dec)
				if err != nil {
					return domain.Node{}, err
				}
				fields = append(fields, domain.Field{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return domain.Node{}, err
			}
			return domain.MapNode(fields...), nil

		case '[':
			var items []domain.Node
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return domain.Node{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return domain.Node{}, err
			}
			return domain.ListNode(items...), nil
		}
		return domain.Node{}, fmt.Errorf("unexpected %q", rune(v))

	case json.Number:
		return domain.ScalarNode(jsonNumber(v)), nil

	case nil:
		return domain.NullNode(), nil

	default:
		return domain.ScalarNode(v), nil
	}
}

// jsonNumber keeps integers as int and everything else as float64, as yaml.v3 does
func jsonNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
