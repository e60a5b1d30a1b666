// Package memory provides the in-memory key-value store.
//
// A single Store is created at server start and shared by every client
// connection for the life of the process. It is backed by pkg/cmap, so
// many readers proceed in parallel while a writer holds its shard
// exclusively.
//
// Thread Safety:
//
// All operations are thread-safe. Get and Set are individually atomic;
// there are no multi-key operations.
package memory
