// Package page turns a logical dotCMS page request into transport requests
// and cache keys.
//
// A Descriptor names a page (path plus rendering context). From it the
// package derives:
//
//   - the canonical REST URL (RESTURL), which is also the REST cache key
//   - the GraphQL query document (GraphQLQuery) and its SHA-256 query id
//     (QueryID), which is both the GraphQL cache key and the upstream qid
//   - the cache lifetime for the requested mode (TTLPolicy)
//
// Every function here is pure: identical descriptors always produce
// byte-identical URLs, documents and keys.
package page
