package signal

import (
	"fmt"
	"strings"

	"github.com/openbeamline/signalbind/internal/channel"
)

// Placeholder is the substitution token every descriptor template must
// contain. It is replaced with the owning device's base identifier when the
// field is resolved.
const Placeholder = "{base}"

// Descriptor declares one signal field on a schema: an identifier template,
// a read/write capability, and channel construction options.
//
// Descriptors are created at schema declaration time, are immutable, and
// are shared by every device bound to the schema. They hold no per-device
// state; resolved channels live in each device's cache.
type Descriptor struct {
	template string
	writable bool
	cfg      channel.Config
	doc      string
}

// Option configures a Descriptor at construction.
type Option func(*Descriptor)

// Writable marks the field as accepting writes. Writable fields form the
// schema's generated set signature, in declaration order.
func Writable() Option {
	return func(d *Descriptor) {
		d.writable = true
		d.cfg.Writable = true
	}
}

// WithReadback requests a companion readback channel: reads come from the
// readback identifier while writes go to the base identifier.
func WithReadback() Option {
	return func(d *Descriptor) {
		d.cfg.HasReadback = true
	}
}

// ReadbackSuffix overrides the default readback suffix for this field.
func ReadbackSuffix(suffix string) Option {
	return func(d *Descriptor) {
		d.cfg.ReadbackSuffix = suffix
	}
}

// StringValued marks the channel value as string-typed.
func StringValued() Option {
	return func(d *Descriptor) {
		d.cfg.String = true
	}
}

// WithDoc attaches an explicit documentation string, bypassing the bundled
// reference table lookup for this field.
func WithDoc(doc string) Option {
	return func(d *Descriptor) {
		d.doc = doc
	}
}

// NewDescriptor creates a field descriptor for the given identifier
// template. The template must contain the {base} placeholder; a template
// without it returns ErrMissingPlaceholder.
func NewDescriptor(template string, opts ...Option) (*Descriptor, error) {
	if !strings.Contains(template, Placeholder) {
		return nil, fmt.Errorf("%w: %q", ErrMissingPlaceholder, template)
	}

	d := &Descriptor{template: template}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error. Intended for
// package-level schema declarations where a malformed template is a
// programming mistake.
func MustDescriptor(template string, opts ...Option) *Descriptor {
	d, err := NewDescriptor(template, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Template returns the unresolved identifier template.
func (d *Descriptor) Template() string {
	return d.template
}

// Writable reports whether the field accepts writes.
func (d *Descriptor) Writable() bool {
	return d.writable
}

// ChannelConfig returns the channel construction options for the field.
func (d *Descriptor) ChannelConfig() channel.Config {
	return d.cfg
}

// Doc returns the explicit documentation string, or empty when the field
// relies on the bundled reference tables.
func (d *Descriptor) Doc() string {
	return d.doc
}

// Resolve substitutes the device base identifier into the template,
// yielding the concrete channel identifier.
func (d *Descriptor) Resolve(base string) string {
	return strings.ReplaceAll(d.template, Placeholder, base)
}
