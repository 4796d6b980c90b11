// Package nvs provides a narrow, typed contract over a namespaced
// key-value area, standing in for the platform's non-volatile storage
// partition (ESP-IDF's NVS, a U-Boot environment, a UEFI variable store).
//
// # Contract
//
// Single-key writes through a Store are assumed to be power-cut atomic: a
// crash during Put either leaves the old value or the new value readable
// on the next open, never a torn mix of the two. Nothing in this package,
// or in the guard package built on top of it, relies on atomicity across
// more than one key in the same call; multi-key durability protocols live
// entirely in the guard package (redundant counters, pending-action
// records) and only ever assume this single-key guarantee.
//
// # Implementations
//
//   - BadgerOpener/BadgerStore wrap github.com/dgraph-io/badger/v4, an
//     embedded LSM-tree key-value engine, for production use. Namespaces
//     are implemented as key prefixes over one shared database, since
//     badger has no native namespace concept.
//   - MemOpener/MemStore are an in-memory implementation for tests, with
//     an optional FaultInjector that can fail or corrupt specific writes to
//     exercise the power-cut and bit-flip recovery paths described in the
//     guard package's invariants.
package nvs
