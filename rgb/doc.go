// Package rgb defines the colour point model shared by the index and the
// SQLite-backed palette. It includes:
//   - Point, its total order and the per-axis comparator used by the k-d index
//   - squared-distance helpers
//   - colour BLOB encoding and hex/CSV parsing
//   - Store: a durable colour -> label palette (SQLiteStore) and its schema
package rgb
