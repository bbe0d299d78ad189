// Package auth attaches dotCMS API credentials to outbound requests.
//
// A Credential is computed once from configuration, preferring an API token
// (Bearer) over a username/password pair (Basic). Transport is an
// http.RoundTripper that sets the Authorization header on every request it
// sends. InspectToken reads the claims of a dotCMS API token, which is a JWT,
// so callers can warn about tokens that are expired or about to expire.
// Tokens are never refreshed.
package auth
