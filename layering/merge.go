// Package layering merges persisted entry maps ordered from strongest to
// weakest. Saving a group file is a read-merge-write: freshly collected values
// form the strong layer and whatever is already stored forms the weak one, so
// keys that no live item produced survive the save untouched.
package layering

import "maps"

// Merge composes maps ordered strongest to weakest. Keys from stronger layers
// win; keys only present in weaker layers are kept. Values pass through clone
// when it is non-nil so the result never aliases an input.
func Merge[K comparable, V any](clone func(V) V, layers ...map[K]V) map[K]V {
	size := 0
	for _, layer := range layers {
		size = max(size, len(layer))
	}
	out := make(map[K]V, size)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			if clone != nil {
				value = clone(value)
			}
			out[key] = value
		}
	}
	return out
}

// MergeEntries merges persisted key/payload maps, copying every payload.
func MergeEntries(layers ...map[string][]byte) map[string][]byte {
	return Merge(CloneBytes, layers...)
}

// MergeGroups merges group-file maps key by key. Groups present in both are
// merged with MergeEntries; groups present in one side are cloned.
func MergeGroups[G ~map[string]E, E ~map[string][]byte](strong, weak G) G {
	out := make(G, max(len(strong), len(weak)))
	for group, entries := range weak {
		out[group] = E(MergeEntries(entries))
	}
	for group, entries := range strong {
		if existing, ok := out[group]; ok {
			out[group] = E(MergeEntries(entries, existing))
			continue
		}
		out[group] = E(MergeEntries(entries))
	}
	return out
}

// CloneBytes returns a copy of b, preserving nil.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Keys returns the keys of m in unspecified order.
func Keys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for key := range maps.Keys(m) {
		out = append(out, key)
	}
	return out
}
