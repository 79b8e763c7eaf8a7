// Package posters turns poster bytes into displayable handles and owns their lifetime.
//
// A [Registry] plays the role of a browser object-URL table: [Registry.Register] validates bytes as an
// image and returns a [Handle] whose [Handle.URL] is served by the web viewer until [Handle.Release].
//
// A [Resolver] decides where the bytes come from. Inline bytes on a movie are wrapped synchronously;
// otherwise the poster is fetched once by movie id, optionally through a shared [Store]
// ([LRU] in memory, or the sqlite and redis stores in the repositories package) and optionally
// downscaled with imaging before it is registered.
package posters
