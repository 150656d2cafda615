// Package store defines persistence contracts for menu group files and the
// implementations the menu tree uses to load and save them.
//
// Responsibilities:
//   - Store only loads/saves the full entry map of a single group.
//   - Cache lazily loads each group once per process and serves item lookups
//     from memory until the group is saved again.
//   - The root menu package stays persistence-agnostic; read-merge-write
//     happens in Manager.SaveAll on top of a Store.
//
// Data flow:
//
//	Item.SetValue -> Cache.Lookup -> Store.Load (first read per group)
//	Manager.SaveAll -> Store.Load -> layering.MergeEntries -> Store.Save -> Cache.Put
//
// File layout:
//
//	FileStore writes one "<group>.bin" file per group containing a gob-encoded
//	map[string][]byte. DefaultDir derives a per-user directory from a hash of
//	the OS username, so several accounts on one machine never share settings.
package store
