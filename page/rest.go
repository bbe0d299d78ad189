package page

import (
	"net/url"
	"strconv"
	"strings"
)

// RESTPrefix is the page API path appended to the API host.
const RESTPrefix = "/api/v1/page/json"

// RESTURL builds the canonical, fully escaped page API URL for d.
//
// Query parameters are emitted in a fixed order: siteId, mode, language_id
// and persona when present, then fireRules and depth always. The returned
// URL is used verbatim as the REST cache key.
func RESTURL(host string, d Descriptor) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(host, "/"))
	b.WriteString(RESTPrefix)
	b.WriteString((&url.URL{Path: NormalizePath(d.Path)}).EscapedPath())

	q := queryWriter{b: &b}
	if d.SiteID != "" {
		q.add("siteId", d.SiteID)
	}
	q.add("mode", d.Mode.String())
	if d.LanguageID != "" {
		q.add("language_id", d.LanguageID)
	}
	if d.Persona != "" {
		q.add("persona", d.Persona)
	}
	q.add("fireRules", strconv.FormatBool(d.FireRules))
	q.add("depth", strconv.Itoa(d.Depth))

	return b.String()
}

// RESTKey returns the cache key for a REST page URL.
func RESTKey(restURL string) string {
	return restURL
}

// queryWriter appends escaped key=value pairs in insertion order.
// url.Values is not used because it sorts keys on Encode.
type queryWriter struct {
	b *strings.Builder
	n int
}

func (q *queryWriter) add(key, value string) {
	if q.n == 0 {
		q.b.WriteByte('?')
	} else {
		q.b.WriteByte('&')
	}
	q.b.WriteString(escapeDataString(key))
	q.b.WriteByte('=')
	q.b.WriteString(escapeDataString(value))
	q.n++
}

// escapeDataString percent-encodes s as an RFC 3986 data string: unlike
// url.QueryEscape, spaces become %20 rather than '+'.
func escapeDataString(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
