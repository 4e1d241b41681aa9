// Package fuzzy implements the approximate matcher behind the command
// palette.
//
// An Index is built once over a slice of items and a list of keys. Each
// key's value is pulled out through Options.Get, so callers decide how
// non-text fields are turned into strings. Matching is bitap based: a query
// matches a value when it can be found with few enough errors close enough
// to Location, and every match reports both a score and the character spans
// that matched.
//
// Scores follow the usual fuzzy-finder convention:
//
//	0      exact match
//	0.001  exact substring at the expected location
//	...    more errors or further away
//	1      no match
//
// Scores of the individual keys are combined into one item score weighted by
// the length of the matched value, so a hit in a short title beats the same
// hit buried in a long description.
//
// Usage:
//
//	opts := fuzzy.DefaultOptions([]string{"title", "description"},
//		func(it Item, key string) string { ... })
//	idx, err := fuzzy.New(items, opts)
//	if err != nil {
//		return err
//	}
//	for _, r := range idx.Search("memb") {
//		fmt.Println(r.Score, r.Item)
//	}
//
// Indexes are immutable; rebuild them when the underlying items change.
package fuzzy
