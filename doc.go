// Package pagecache is a read-through, cache-aside layer in front of an
// expensive render operation. Repeated requests for the same logical page are
// served from a pluggable byte store instead of being rendered again.
//
// Components:
//   - Renderer: the wrapped render collaborator (route + request context -> Result).
//   - Provider: byte store with TTL and an awaitable Reset (memory, Ristretto, BigCache, Redis).
//   - Codec[Result]: (de)serializes results (JSON by default, CBOR, Msgpack).
//   - Key policy: allowlist (prefix or regexp Pages) or custom predicate, default
//     or custom key deriver, TTL resolution.
//   - Version guard: wipes the store once when the application version changes.
//
// Request flow:
//
//	key, ttl, ok := cache.CacheKey(route, rc)  // not ok -> render directly
//	hit          -> decode stored entry, renderer not called
//	miss / error -> render, store in background unless Error or Redirected
//
// Cache failures never fail a request: the worst case is a slower render.
package pagecache
