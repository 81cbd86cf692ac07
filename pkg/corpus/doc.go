// Package corpus acquires the Debian Sources index that the resolver runs
// over.
//
// A [Fetcher] downloads the compressed index from a mirror, retries
// transient failures, and keeps the raw payload in a [cache.Cache] so that
// repeated runs skip the network. Refreshing a cached corpus sends a
// conditional request and reuses the payload on 304 Not Modified. [Open]
// reads a local file instead.
//
// Payloads are decompressed by magic bytes: xz (ulikunitz/xz), gzip
// (klauspost/compress) or plain text. Every [Corpus] carries an xxhash
// digest of its decompressed text; reports record it and report cache keys
// include it, so a changed archive never serves a stale report.
//
//	f := corpus.NewFetcher(corpus.Options{Cache: c})
//	src, err := f.Fetch(ctx, corpus.URL("", "trixie", "main"), false)
//	db, err := src.Database()
package corpus
