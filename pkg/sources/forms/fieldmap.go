package forms

import (
	"sync"

	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/store"
)

// KeyFieldMap is the store key holding the flattened fields.
const KeyFieldMap = "search.fieldmap"

// FieldItem is a flattened, indexable form field.
type FieldItem struct {
	Route       string `json:"route"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Group       string `json:"group,omitempty"`
}

// FieldMap flattens form definitions at most once and publishes the result
// through the store. Consumers share one FieldMap.
type FieldMap struct {
	mu     sync.Mutex
	loaded bool
	st     *store.Store
	defs   func() []FormDefinition
	logger *log.Logger
}

// NewFieldMap returns a field map over the definitions returned by defs.
// A nil defs uses the registered definitions.
func NewFieldMap(st *store.Store, defs func() []FormDefinition) *FieldMap {
	if defs == nil {
		defs = Registered
	}
	return &FieldMap{st: st, defs: defs, logger: log.ForService("forms")}
}

// Load flattens the definitions and publishes them, unless that already
// happened. It reports whether this call did the work.
func (m *FieldMap) Load() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return false
	}
	items := Flatten(m.defs())
	m.loaded = true
	m.st.Set(KeyFieldMap, items)
	m.logger.Debugf("published %d form fields", len(items))
	return true
}

// Fields returns the published fields, nil before Load.
func (m *FieldMap) Fields() []FieldItem {
	v, _ := m.st.Get(KeyFieldMap)
	items, _ := v.([]FieldItem)
	return items
}

// Subscribe calls fn with every published field list.
func (m *FieldMap) Subscribe(fn func([]FieldItem)) (unsubscribe func()) {
	return m.st.Subscribe(KeyFieldMap, func(v any) {
		if items, ok := v.([]FieldItem); ok {
			fn(items)
		}
	})
}

// Reset forgets the published fields so the next Load flattens again.
func (m *FieldMap) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = false
	m.st.Delete(KeyFieldMap)
}

// Flatten turns definitions into indexable items.
func Flatten(defs []FormDefinition) []FieldItem {
	var items []FieldItem
	for _, def := range defs {
		group := map[string]string{}
		for _, g := range def.FormGroups {
			for _, f := range g.Fields {
				group[f.Name] = g.Title
			}
		}
		for _, f := range def.fields() {
			items = append(items, FieldItem{
				Route:       def.Route,
				Name:        f.Name,
				Title:       text(f.Label),
				Description: text(f.Help),
				Group:       group[f.Name],
			})
		}
	}
	return items
}

func text(v any) string {
	s, _ := v.(string)
	return s
}
