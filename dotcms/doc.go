// Package dotcms fetches pages from the dotCMS page API through a shared,
// request-deduplicating cache.
//
// HTTPFetcher performs the raw exchanges: a GET against the REST page
// endpoint or a POST to the GraphQL endpoint. Client derives the cache key
// for a page descriptor, looks it up in a cache.Loader and calls the fetcher
// at most once per key for concurrent callers. Payloads are returned as raw
// bytes; DecodeREST and DecodeGraphQL are provided for callers that want the
// envelope unwrapped.
//
// Failures belong to a closed set of kinds (see Kind): non-2xx statuses,
// network failures and malformed payloads. Failures are never cached.
package dotcms
