// Package nearest implements a SQLite virtual table answering nearest-colour
// queries against a palette table with MATCH semantics, and the shared
// in-process index cache behind it.
//
// Usage:
//
//	nearest.Register(db, nearest.WithLoader(loader)) // before db opens a connection
//	nearest.Warm(ctx, db, "palette", opts)
//
//	CREATE VIRTUAL TABLE nn USING rgb_nearest(palette, index=kd, search=stack);
//	SELECT label, color, dist2 FROM nn WHERE query MATCH '#336699';
//	SELECT label, color FROM nn;  -- lists the palette
//
// Features:
//   - MATCH argument as '#rrggbb', 'r,g,b' or a 3-byte colour BLOB
//   - indexes built from the palette on first use and cached per database
//   - rgb_invalidate(table) SQL function and optional palette triggers
//   - cache misses inside a query build through the loader handle or fail with ErrNotWarmed
package nearest
