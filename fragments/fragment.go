package fragments

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	vjson "github.com/richinex/examvault/internal/json"
)

// Item is one question. Unknown fields are preserved.
type Item map[string]interface{}

// fragment is one parsed fragment file.
type fragment struct {
	header map[string]interface{}
	items  []Item
}

type fragmentDoc struct {
	Header map[string]interface{} `json:"paper"`
	Items  []Item                 `json:"questions"`
}

// loadFragment reads and parses one fragment file.
// Null entries in the item list are dropped.
func loadFragment(path string) (fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fragment{}, fmt.Errorf("failed to read fragment: %w", err)
	}

	doc, err := vjson.Decode[fragmentDoc](data)
	if err != nil {
		return fragment{}, err
	}
	if doc.Header == nil {
		return fragment{}, errNoHeader
	}

	items := make([]Item, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item != nil {
			items = append(items, item)
		}
	}
	return fragment{header: doc.Header, items: items}, nil
}

// normalizeItem fixes up the options field and the section tag in place.
func (a *Aggregator) normalizeItem(item Item, file string) {
	if raw, ok := item[OptionsKey].(string); ok {
		item[OptionsKey] = a.parseOptions(raw, file)
	}
	if tag, ok := item[TagKey]; !ok || tag == nil || tag == "" {
		item[TagKey] = DefaultTag
	}
}

// parseOptions turns a serialized option list into structured data.
// Serialized arrays/objects are decoded, falling back to an empty list;
// anything else is treated as a comma-separated list.
func (a *Aggregator) parseOptions(raw, file string) interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []interface{}{}
	}

	if vjson.LooksStructured(raw) {
		parsed, err := vjson.DecodeString[interface{}](raw)
		if err != nil {
			a.logger.Warn("option list parse failed", zap.String("file", file), zap.Error(err))
			return []interface{}{}
		}
		return parsed
	}

	var options []interface{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			options = append(options, part)
		}
	}
	if options == nil {
		return []interface{}{}
	}
	return options
}
