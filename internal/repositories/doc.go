// Package repositories implements the persistent poster caches.
//
// Both implement [posters.Store] so a [posters.Resolver] can share fetched posters across pages and runs:
//   - [PosterRepository] : SQLite table of poster bytes keyed by movie id, with TTL pruning
//   - [RedisPosterCache] : redis hashes with per-key expiry, shared between viewer processes
//
// [OpenPosterStore] selects the store named by the [cache] backend setting.
package repositories
