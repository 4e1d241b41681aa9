package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ConfigurationError is returned when an index is built with unusable options.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "fuzzy: invalid configuration: " + e.Reason
}

// Options configures an Index.
type Options[T any] struct {
	// Keys are the field names to index. Required.
	Keys []string

	// Get extracts the string value of key from item. Values that are not
	// text should come back as "".
	Get func(item T, key string) string

	// Threshold is the worst bitap score accepted (0 exact .. 1 anything).
	Threshold float64

	// Distance is how far from Location a match may sit before its score
	// degrades to 1.
	Distance int

	// MinMatchCharLength is the shortest run of matched characters worth
	// reporting. Candidates without such a run do not match.
	MinMatchCharLength int

	Location       int
	IgnoreLocation bool
	FindAllMatches bool
	CaseSensitive  bool

	// IgnoreDiacritics matches "cafe" against "café".
	IgnoreDiacritics bool
}

// DefaultOptions returns the palette's tuning: threshold 0.4, distance 75
// and a minimum match length of 2.
func DefaultOptions[T any](keys []string, get func(item T, key string) string) Options[T] {
	return Options[T]{
		Keys:               keys,
		Get:                get,
		Threshold:          0.4,
		Distance:           75,
		MinMatchCharLength: 2,
	}
}

// Match is the span information for one matched key.
type Match struct {
	Key     string
	Value   string
	Indices [][2]int
}

// Result is a matched item. Score is 0 for a perfect match and approaches 1
// for weak matches. RefIndex is the item's position in the indexed slice.
type Result[T any] struct {
	Item     T
	Score    float64
	RefIndex int
	Matches  []Match
}

type field struct {
	value  string
	folded []rune
	norm   float64
}

type record[T any] struct {
	item   T
	fields []field // parallel to Options.Keys
}

// Index is an immutable in-memory fuzzy index. Rebuild it when the
// underlying items change. It is safe for concurrent searches.
type Index[T any] struct {
	opts    Options[T]
	weight  float64
	records []record[T]
}

// New builds an index over items.
func New[T any](items []T, opts Options[T]) (*Index[T], error) {
	if len(opts.Keys) == 0 {
		return nil, &ConfigurationError{Reason: "missing keys"}
	}
	if opts.Get == nil {
		return nil, &ConfigurationError{Reason: "missing field getter"}
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, &ConfigurationError{Reason: "threshold must be within [0, 1]"}
	}

	idx := &Index[T]{
		opts: opts,
		// Every key weighs the same; weights are normalised to sum 1.
		weight:  1 / float64(len(opts.Keys)),
		records: make([]record[T], len(items)),
	}

	f := idx.newFolder()
	for i, item := range items {
		fields := make([]field, len(opts.Keys))
		for k, key := range opts.Keys {
			value := opts.Get(item, key)
			if strings.TrimSpace(value) == "" {
				continue
			}
			fields[k] = field{
				value:  value,
				folded: f.fold(value),
				norm:   fieldNorm(value),
			}
		}
		idx.records[i] = record[T]{item: item, fields: fields}
	}

	return idx, nil
}

// Len returns the number of indexed items.
func (idx *Index[T]) Len() int {
	return len(idx.records)
}

// Search returns the items matching query, best first. Items with equal
// scores keep their insertion order. An empty query matches nothing.
func (idx *Index[T]) Search(query string) []Result[T] {
	if query == "" {
		return []Result[T]{}
	}

	pattern := idx.newFolder().fold(query)
	s := newSearcher(pattern, bitapOptions{
		location:           idx.opts.Location,
		distance:           idx.opts.Distance,
		threshold:          idx.opts.Threshold,
		minMatchCharLength: max(1, idx.opts.MinMatchCharLength),
		ignoreLocation:     idx.opts.IgnoreLocation,
		findAllMatches:     idx.opts.FindAllMatches,
	})

	results := []Result[T]{}
	for i, rec := range idx.records {
		var (
			matches []Match
			total   = 1.0
		)
		for k, f := range rec.fields {
			if f.folded == nil {
				continue
			}
			res := s.searchIn(f.folded)
			if !res.isMatch {
				continue
			}
			score := res.score
			if score == 0 {
				score = epsilon
			}
			total *= math.Pow(score, idx.weight*f.norm)
			matches = append(matches, Match{
				Key:     idx.opts.Keys[k],
				Value:   f.value,
				Indices: res.indices,
			})
		}
		if len(matches) == 0 {
			continue
		}
		results = append(results, Result[T]{
			Item:     rec.item,
			Score:    total,
			RefIndex: i,
			Matches:  matches,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	return results
}

// epsilon stands in for an exact match so the product of key scores keeps
// its ordering.
var epsilon = math.Nextafter(1, 2) - 1

// fieldNorm penalises long values: 1/sqrt(word count), three decimals.
func fieldNorm(value string) float64 {
	words := len(strings.Fields(strings.ReplaceAll(value, "\t", " ")))
	if words == 0 {
		return 1
	}
	n := 1 / math.Sqrt(float64(words))
	return math.Round(n*1000) / 1000
}

// folder normalises text rune by rune so offsets into the folded form are
// offsets into the original string.
type folder struct {
	caser     *cases.Caser
	diacritic transform.Transformer
}

func (idx *Index[T]) newFolder() *folder {
	f := &folder{}
	if !idx.opts.CaseSensitive {
		c := cases.Lower(language.Und)
		f.caser = &c
	}
	if idx.opts.IgnoreDiacritics {
		f.diacritic = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}
	return f
}

func (f *folder) fold(s string) []rune {
	out := make([]rune, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, f.foldRune(r))
	}
	return out
}

func (f *folder) foldRune(r rune) rune {
	if f.diacritic != nil && r >= utf8.RuneSelf {
		if s, _, err := transform.String(f.diacritic, string(r)); err == nil {
			if b, size := utf8.DecodeRuneInString(s); size == len(s) && b != utf8.RuneError {
				r = b
			}
		}
	}
	if f.caser != nil {
		if r < utf8.RuneSelf {
			return unicode.ToLower(r)
		}
		lower := f.caser.String(string(r))
		if b, size := utf8.DecodeRuneInString(lower); size == len(lower) {
			return b
		}
		return unicode.ToLower(r)
	}
	return r
}
