// Package sources holds helpers shared by the palette's source adapters.
// The adapters themselves live in the sub-packages: actions, routes, forms
// and remote.
package sources

import (
	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/fuzzy"
)

// Keys are the item fields every source indexes.
var Keys = []string{"title", "description"}

// ItemField extracts an indexed field from an item.
func ItemField(item core.Item, key string) string {
	switch key {
	case "title":
		return item.Title
	case "description":
		return item.Description
	}
	return ""
}

// NewIndex builds a fuzzy index over items with the palette's options.
func NewIndex(items []core.Item) (*fuzzy.Index[core.Item], error) {
	return fuzzy.New(items, fuzzy.DefaultOptions(Keys, ItemField))
}

// ToResults converts fuzzy results to palette results, applying fn to each
// matched item when fn is not nil.
func ToResults(matches []fuzzy.Result[core.Item], fn func(core.Item) core.Item) []core.Result {
	results := make([]core.Result, 0, len(matches))
	for _, m := range matches {
		item := m.Item
		if fn != nil {
			item = fn(item)
		}
		results = append(results, core.Result{
			Item:     item,
			Score:    m.Score,
			RefIndex: m.RefIndex,
			Matches:  toMatches(m.Matches),
		})
	}
	return results
}

func toMatches(ms []fuzzy.Match) []core.Match {
	if len(ms) == 0 {
		return nil
	}
	out := make([]core.Match, len(ms))
	for i, m := range ms {
		out[i] = core.Match{Key: m.Key, Value: m.Value, Indices: m.Indices}
	}
	return out
}
