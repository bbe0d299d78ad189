package page

import (
	"strconv"
	"strings"

	"github.com/jonwraymond/cmsfetch/cache"
)

// queryPlaceholder marks where the page(...) selector goes in pageTemplate.
const queryPlaceholder = "${query}"

// pageTemplate is the fixed selection set requested for every page.
// Its shape must stay stable: the upstream plan cache is keyed on the
// digest of the full document.
const pageTemplate = `
   {
        ${query} 
        {
            _map
            urlContentMap {
                identifier
                modDate
                publishDate
                creationDate
                title
                baseType
                inode
                archived
                _map
                urlMap
                working
                locked
                contentType
                live
            }
            title
            friendlyName
            description
            tags
            canEdit
            canLock
            canRead
            template {
                inode
                identifier
                drawed
            }
            containers {
                path
                identifier
                maxContentlets
                container {
                    identifier
                    path
                    maxContentlets
                }
                containerStructures {
                    contentTypeVar
                    inode
                    identifier
                }
                containerContentlets {
                    uuid
                    contentlets {
                        identifier
                        modDate
                        publishDate
                        creationDate
                        title
                        baseType
                        inode
                        archived
                        _map
                        urlMap
                        working
                        locked
                        contentType
                        live
                    }
                }
            }
            layout {
                header
                footer
                sidebar {
                    widthPercent
                    width
                    location
                }
                body {
                    rows {
                        columns {
                            leftOffset
                            styleClass
                            width
                            left
                            containers {
                                identifier
                                uuid
                            }
                        }
                    }
                }
            }
            viewAs {
                visitor {
                    persona {
                        name
                        keyTag
                        identifier
                    }
                    device
                    tags {
                        tag
                        count
                    }
                    geo {
                        continent
                        country
                        subdivision
                        city
                        timezone
                        latitude
                        longitude
                        continentCode
                    }
                }
                language {
                    id
                    languageCode
                    countryCode
                    language
                    country
                }
            }
        }
    }
    `

// GraphQLQuery builds the page query document for d. Depth is ignored.
func GraphQLQuery(d Descriptor) string {
	return strings.Replace(pageTemplate, queryPlaceholder, Selector(d), 1)
}

// Selector builds the page(...) field selector for d.
//
// Arguments are written in a fixed order (url, pageMode, personaId,
// fireRules, site, languageId) with the separators the upstream schema has
// always been sent. String arguments are escaped with EscapeString.
func Selector(d Descriptor) string {
	var a argWriter
	a.str("url: ", NormalizePath(d.Path))
	a.str("pageMode:", d.Mode.String())
	if d.Persona != "" {
		a.str("personaId : ", d.Persona)
	}
	a.raw("fireRules :", strconv.FormatBool(d.FireRules))
	if d.SiteID != "" {
		a.str("site : ", d.SiteID)
	}
	if d.LanguageID != "" {
		a.str("languageId : ", d.LanguageID)
	}
	return "page(" + a.b.String() + ")"
}

// QueryID returns the query id of a GraphQL document: the lowercase hex
// SHA-256 of its UTF-8 bytes. It is both the cache key and the qid sent
// upstream.
func QueryID(document string) string {
	return cache.HashKey(document)
}

type argWriter struct {
	b strings.Builder
}

func (a *argWriter) sep() {
	if a.b.Len() > 0 {
		a.b.WriteByte(',')
	}
}

// str writes a quoted, escaped string argument.
func (a *argWriter) str(prefix, value string) {
	a.sep()
	a.b.WriteString(prefix)
	a.b.WriteByte('"')
	a.b.WriteString(EscapeString(value))
	a.b.WriteByte('"')
}

// raw writes a literal (boolean or enum) argument.
func (a *argWriter) raw(prefix, value string) {
	a.sep()
	a.b.WriteString(prefix)
	a.b.WriteString(value)
}

// EscapeString escapes s for use inside a double-quoted GraphQL string
// value. Quotes, backslashes and all C0 control characters are escaped;
// everything else is passed through.
func EscapeString(s string) string {
	if !needsEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[r>>4])
				b.WriteByte(hexDigits[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func needsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' || c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}
