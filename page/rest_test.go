package page

import (
	"strings"
	"testing"
)

const testHost = "https://demo.dotcms.com"

func TestRESTURL_RootLive(t *testing.T) {
	got := RESTURL(testHost, NewDescriptor("/", WithMode(ModeLive)))
	want := "https://demo.dotcms.com/api/v1/page/json/index?mode=LIVE&fireRules=false&depth=1"

	if got != want {
		t.Errorf("RESTURL() = %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "/page/json/index?mode=LIVE&fireRules=false&depth=1") {
		t.Errorf("RESTURL() = %q, want suffix .../page/json/index?...&fireRules=false&depth=1", got)
	}
}

func TestRESTURL_AllParameters(t *testing.T) {
	d := NewDescriptor("/about us/",
		WithSite("demo.dotcms.com"),
		WithMode(ModePreview),
		WithLanguage("1"),
		WithPersona("dot:persona"),
		WithFireRules(true),
		WithDepth(2),
	)

	got := RESTURL(testHost, d)
	want := "https://demo.dotcms.com/api/v1/page/json/about%20us/index" +
		"?siteId=demo.dotcms.com&mode=PREVIEW&language_id=1&persona=dot%3Apersona&fireRules=true&depth=2"

	if got != want {
		t.Errorf("RESTURL() =\n  %q\nwant\n  %q", got, want)
	}
}

func TestRESTURL_EscapesValues(t *testing.T) {
	d := NewDescriptor("/", WithPersona("a b+c&d=e"))

	got := RESTURL(testHost, d)
	if !strings.Contains(got, "persona=a%20b%2Bc%26d%3De&") {
		t.Errorf("RESTURL() = %q, want escaped persona a%%20b%%2Bc%%26d%%3De", got)
	}
}

func TestRESTURL_EscapesPath(t *testing.T) {
	got := RESTURL(testHost, NewDescriptor("/a?b#c"))
	want := "https://demo.dotcms.com/api/v1/page/json/a%3Fb%23c?mode=LIVE&fireRules=false&depth=1"

	if got != want {
		t.Errorf("RESTURL() = %q, want %q", got, want)
	}
}

func TestRESTURL_TrimsHostSlash(t *testing.T) {
	a := RESTURL(testHost+"/", NewDescriptor("/foo"))
	b := RESTURL(testHost, NewDescriptor("/foo"))

	if a != b {
		t.Errorf("RESTURL() with trailing slash = %q, want %q", a, b)
	}
}

func TestRESTURL_Deterministic(t *testing.T) {
	d := NewDescriptor("/news/", WithSite("s1"), WithPersona("p1"), WithLanguage("1"))

	first := RESTURL(testHost, d)
	for i := 0; i < 10; i++ {
		if got := RESTURL(testHost, d); got != first {
			t.Fatalf("RESTURL() iteration %d = %q, want %q", i, got, first)
		}
	}
}

func TestRESTURL_NormalizedPathsShareKey(t *testing.T) {
	a := RESTKey(RESTURL(testHost, NewDescriptor("")))
	b := RESTKey(RESTURL(testHost, NewDescriptor("/")))
	c := RESTKey(RESTURL(testHost, NewDescriptor("/index")))

	if a != b || b != c {
		t.Errorf("keys differ for equivalent paths:\n  %q\n  %q\n  %q", a, b, c)
	}
}

func TestRESTKey_FieldSensitivity(t *testing.T) {
	base := NewDescriptor("/news", WithSite("s1"), WithLanguage("1"), WithPersona("p1"))

	variants := map[string]Descriptor{
		"base":      base,
		"path":      withField(base, func(d *Descriptor) { d.Path = "/events" }),
		"site":      withField(base, func(d *Descriptor) { d.SiteID = "s2" }),
		"no site":   withField(base, func(d *Descriptor) { d.SiteID = "" }),
		"mode":      withField(base, func(d *Descriptor) { d.Mode = ModeEdit }),
		"language":  withField(base, func(d *Descriptor) { d.LanguageID = "2" }),
		"persona":   withField(base, func(d *Descriptor) { d.Persona = "p2" }),
		"fireRules": withField(base, func(d *Descriptor) { d.FireRules = true }),
		"depth":     withField(base, func(d *Descriptor) { d.Depth = 3 }),
	}

	seen := make(map[string]string, len(variants))
	for name, d := range variants {
		key := RESTKey(RESTURL(testHost, d))
		if other, dup := seen[key]; dup {
			t.Errorf("variants %q and %q share key %q", name, other, key)
		}
		seen[key] = name
	}
}

func withField(d Descriptor, mutate func(*Descriptor)) Descriptor {
	mutate(&d)
	return d
}
