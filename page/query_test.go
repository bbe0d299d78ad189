package page

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

func TestSelector_PreviewWithPersona(t *testing.T) {
	d := NewDescriptor("/news/", WithMode(ModePreview), WithPersona("p1"), WithFireRules(true))

	got := Selector(d)
	want := `page(url: "/news/index",pageMode:"PREVIEW",personaId : "p1",fireRules :true)`
	if got != want {
		t.Errorf("Selector() = %q, want %q", got, want)
	}

	doc := GraphQLQuery(d)
	if !strings.Contains(doc, want) {
		t.Errorf("GraphQLQuery() does not contain selector %q", want)
	}
}

func TestSelector_AllArguments(t *testing.T) {
	d := NewDescriptor("/",
		WithSite("demo.dotcms.com"),
		WithLanguage("1"),
		WithPersona("p1"),
	)

	got := Selector(d)
	want := `page(url: "/index",pageMode:"LIVE",personaId : "p1",fireRules :false,site : "demo.dotcms.com",languageId : "1")`
	if got != want {
		t.Errorf("Selector() = %q, want %q", got, want)
	}
}

func TestSelector_OmitsEmptyOptionals(t *testing.T) {
	got := Selector(NewDescriptor("/about"))
	want := `page(url: "/about",pageMode:"LIVE",fireRules :false)`
	if got != want {
		t.Errorf("Selector() = %q, want %q", got, want)
	}
}

func TestGraphQLQuery_IgnoresDepth(t *testing.T) {
	a := GraphQLQuery(NewDescriptor("/about", WithDepth(1)))
	b := GraphQLQuery(NewDescriptor("/about", WithDepth(4)))

	if a != b {
		t.Error("GraphQLQuery() differs by depth, want identical documents")
	}
}

func TestGraphQLQuery_ReplacesPlaceholder(t *testing.T) {
	doc := GraphQLQuery(NewDescriptor("/"))

	if strings.Contains(doc, queryPlaceholder) {
		t.Errorf("GraphQLQuery() still contains %q", queryPlaceholder)
	}
	if !strings.Contains(doc, "urlContentMap") || !strings.Contains(doc, "viewAs") {
		t.Error("GraphQLQuery() is missing the page selection set")
	}
}

func TestGraphQLQuery_RejectsInjection(t *testing.T) {
	evil := `p1") { __typename } x: page(url: "/admin`
	doc := GraphQLQuery(NewDescriptor("/", WithPersona(evil)))

	want := `personaId : "p1\") { __typename } x: page(url: \"/admin"`
	if !strings.Contains(doc, want) {
		t.Errorf("GraphQLQuery() did not escape persona, want fragment %q", want)
	}
	code := stripStringLiterals(doc)
	if n := strings.Count(code, "page("); n != 1 {
		t.Errorf("GraphQLQuery() has %d page( selectors outside string literals, want 1", n)
	}
	if strings.Contains(code, "__typename") {
		t.Error("GraphQLQuery() leaked persona text outside its string literal")
	}
}

// stripStringLiterals drops the contents of every double-quoted GraphQL
// string from doc, honoring backslash escapes.
func stripStringLiterals(doc string) string {
	var b strings.Builder
	inString, escaped := false, false
	for _, r := range doc {
		switch {
		case !inString:
			b.WriteRune(r)
			inString = r == '"'
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			b.WriteRune(r)
			inString = false
		}
	}
	return b.String()
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"/news/index", "/news/index"},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
		{"line\nbreak", `line\nbreak`},
		{"tab\there", `tab\there`},
		{"cr\r", `cr\r`},
		{"\b\f", `\b\f`},
		{"\x01", `\u0001`},
		{"\x1f", `\u001f`},
		{"\x7f", `\u007f`},
		{"héllo", "héllo"},
	}

	for _, tt := range tests {
		if got := EscapeString(tt.in); got != tt.want {
			t.Errorf("EscapeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestQueryID_Format(t *testing.T) {
	id := QueryID(GraphQLQuery(NewDescriptor("/")))

	if !hex64.MatchString(id) {
		t.Errorf("QueryID() = %q, want 64 lowercase hex characters", id)
	}
}

func TestQueryID_KnownDigest(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := QueryID("abc"); got != want {
		t.Errorf("QueryID(abc) = %q, want %q", got, want)
	}
}

func TestQueryID_DistinctDocuments(t *testing.T) {
	seen := make(map[string]Descriptor)
	modes := []Mode{ModeLive, ModePreview, ModeEdit}

	for i := 0; i < 20; i++ {
		for _, m := range modes {
			for _, fire := range []bool{false, true} {
				d := NewDescriptor(fmt.Sprintf("/p/%d", i), WithMode(m), WithFireRules(fire))
				if i%2 == 0 {
					d.Persona = fmt.Sprintf("persona-%d", i)
				}
				id := QueryID(GraphQLQuery(d))
				if prev, dup := seen[id]; dup {
					t.Fatalf("QueryID collision between %+v and %+v", prev, d)
				}
				seen[id] = d
			}
		}
	}
}

func TestQueryID_FieldSensitivity(t *testing.T) {
	base := NewDescriptor("/news", WithSite("s1"), WithLanguage("1"), WithPersona("p1"))

	variants := map[string]Descriptor{
		"base":        base,
		"path":        withField(base, func(d *Descriptor) { d.Path = "/events" }),
		"site":        withField(base, func(d *Descriptor) { d.SiteID = "s2" }),
		"no site":     withField(base, func(d *Descriptor) { d.SiteID = "" }),
		"mode":        withField(base, func(d *Descriptor) { d.Mode = ModeEdit }),
		"language":    withField(base, func(d *Descriptor) { d.LanguageID = "2" }),
		"no language": withField(base, func(d *Descriptor) { d.LanguageID = "" }),
		"persona":     withField(base, func(d *Descriptor) { d.Persona = "p2" }),
		"no persona":  withField(base, func(d *Descriptor) { d.Persona = "" }),
		"fireRules":   withField(base, func(d *Descriptor) { d.FireRules = true }),
	}

	seen := make(map[string]string, len(variants))
	for name, d := range variants {
		id := QueryID(GraphQLQuery(d))
		if other, dup := seen[id]; dup {
			t.Errorf("variants %q and %q share query id %q", name, other, id)
		}
		seen[id] = name
	}
}

func TestQueryID_RootLiveDigest(t *testing.T) {
	// The template is sent verbatim, including the space after the selector;
	// any change to it moves every query id.
	want := "0e18f205b2086f396a4c90dda1c12aa472987b4c013f5c0c3170ea33712455b9"
	if got := QueryID(GraphQLQuery(NewDescriptor("/"))); got != want {
		t.Errorf("QueryID(root LIVE) = %q, want %q", got, want)
	}
	if !strings.Contains(pageTemplate, queryPlaceholder+" \n") {
		t.Error("pageTemplate lost the space after the selector placeholder")
	}
}

func TestQueryID_Deterministic(t *testing.T) {
	d := NewDescriptor("/news/", WithMode(ModePreview), WithPersona("p1"))

	if QueryID(GraphQLQuery(d)) != QueryID(GraphQLQuery(d)) {
		t.Error("QueryID() is not deterministic")
	}
}
