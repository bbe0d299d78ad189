package page

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for unrecognized mode names.
var ErrUnknownMode = errors.New("page: unknown mode")

// Mode is the rendering mode a page is requested in.
type Mode int

const (
	// ModeLive renders published content. It is the zero value.
	ModeLive Mode = iota
	// ModePreview renders the working (draft) version.
	ModePreview
	// ModeEdit renders the page for in-context editing.
	ModeEdit
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "LIVE"
	case ModePreview:
		return "PREVIEW"
	case ModeEdit:
		return "EDIT"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. Both the short names (LIVE, PREVIEW, EDIT)
// and the dotCMS long forms (LIVE_MODE, PREVIEW_MODE, EDIT_MODE) are
// accepted, case-insensitively. An empty string yields ModeLive.
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, "_MODE")
	switch name {
	case "", "LIVE":
		return ModeLive, nil
	case "PREVIEW":
		return ModePreview, nil
	case "EDIT":
		return ModeEdit, nil
	default:
		return ModeLive, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// DefaultDepth is the related-content depth requested when none is given.
const DefaultDepth = 1

// Descriptor identifies one logical page fetch.
//
// Optional string fields are absent when empty. Build descriptors with
// NewDescriptor so defaults are applied; a Descriptor is a value and is not
// modified by any function in this package.
type Descriptor struct {
	Path       string
	SiteID     string
	Mode       Mode
	LanguageID string
	Persona    string
	FireRules  bool

	// Depth only applies to the REST transport.
	Depth int
}

// Option configures a Descriptor.
type Option func(*Descriptor)

// NewDescriptor creates a descriptor for path in live mode with depth 1
// and rules disabled, then applies opts.
func NewDescriptor(path string, opts ...Option) Descriptor {
	d := Descriptor{
		Path:  path,
		Mode:  ModeLive,
		Depth: DefaultDepth,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithSite sets the site identifier.
func WithSite(siteID string) Option {
	return func(d *Descriptor) { d.SiteID = siteID }
}

// WithMode sets the rendering mode.
func WithMode(mode Mode) Option {
	return func(d *Descriptor) { d.Mode = mode }
}

// WithLanguage sets the language identifier.
func WithLanguage(languageID string) Option {
	return func(d *Descriptor) { d.LanguageID = languageID }
}

// WithPersona sets the persona key tag.
func WithPersona(persona string) Option {
	return func(d *Descriptor) { d.Persona = persona }
}

// WithFireRules enables or disables rule execution on the server.
func WithFireRules(fire bool) Option {
	return func(d *Descriptor) { d.FireRules = fire }
}

// WithDepth sets the related-content depth (REST only).
func WithDepth(depth int) Option {
	return func(d *Descriptor) { d.Depth = depth }
}

// NormalizePath canonicalizes a content path. An empty path becomes "/",
// and a path ending in "/" gets "index" appended.
func NormalizePath(path string) string {
	if path == "" {
		path = "/"
	}
	if strings.HasSuffix(path, "/") {
		return path + "index"
	}
	return path
}
