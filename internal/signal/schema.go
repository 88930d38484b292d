package signal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/openbeamline/signalbind/internal/docdb"
)

// Schema is the immutable registry of signal fields for one device type.
//
// It records every declared descriptor, the field declaration order, the
// writable subset (which forms the generated set signature), group
// declarations, and the ordered documentation sources searched by Doc.
//
// A Schema is built exactly once via Builder and never mutated after;
// concurrent readers need no synchronization. Documentation lookups are
// memoized internally.
type Schema struct {
	name       string
	fields     map[string]*Descriptor
	order      []string
	writable   []string
	groups     map[string][]string
	groupOrder []string
	docSources []string

	docMu    sync.Mutex
	docCache map[string]string
}

// Builder accumulates field declarations for a schema.
//
// Declaration mirrors a class body: fields are registered in the order they
// are declared, and declaring a name twice keeps the original position but
// replaces the descriptor — the later declaration wins. This shadowing is
// permitted for schema extension but discouraged within one builder.
//
// Builder methods collect errors rather than returning them, so
// declarations chain; Build surfaces everything collected.
type Builder struct {
	name       string
	fields     map[string]*Descriptor
	order      []string
	groups     map[string][]string
	groupOrder []string
	ownDocs    []string
	parentDocs []string
	errs       []error
}

// NewSchema starts a schema declaration with the given type name.
func NewSchema(name string) *Builder {
	return &Builder{
		name:   name,
		fields: make(map[string]*Descriptor),
		groups: make(map[string][]string),
	}
}

// Extend inherits every field, group and documentation source from a parent
// schema. Fields declared on this builder afterwards shadow inherited ones;
// this builder's own documentation sources are searched before the
// parent's, mirroring a most-derived-first ancestor walk.
func (b *Builder) Extend(parent *Schema) *Builder {
	if parent == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil parent schema", ErrInvalidField))
		return b
	}

	for _, name := range parent.order {
		b.declare(name, parent.fields[name])
	}
	for _, name := range parent.groupOrder {
		b.declareGroup(name, parent.groups[name])
	}
	b.parentDocs = append(b.parentDocs, parent.docSources...)
	return b
}

// Doc appends bundled documentation tables consulted for this schema's
// fields, in search order.
func (b *Builder) Doc(tables ...string) *Builder {
	b.ownDocs = append(b.ownDocs, tables...)
	return b
}

// Field declares a signal field with a template and options.
// Template validation errors are collected and surface from Build,
// annotated with the field name.
func (b *Builder) Field(name, template string, opts ...Option) *Builder {
	d, err := NewDescriptor(template, opts...)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("field %q: %w", name, err))
		return b
	}
	return b.Add(name, d)
}

// Add declares a signal field with a prebuilt descriptor.
func (b *Builder) Add(name string, d *Descriptor) *Builder {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: empty field name", ErrInvalidField))
		return b
	}
	if d == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: field %q has nil descriptor", ErrInvalidField, name))
		return b
	}
	b.declare(name, d)
	return b
}

// Group declares a named group over previously declared fields. The group
// is read and written as a bundle; member order is preserved.
func (b *Builder) Group(name string, members ...string) *Builder {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: empty group name", ErrInvalidGroup))
		return b
	}
	if len(members) == 0 {
		b.errs = append(b.errs, fmt.Errorf("%w: group %q has no members", ErrInvalidGroup, name))
		return b
	}
	b.declareGroup(name, members)
	return b
}

// declare registers a field, keeping first-declaration order on shadowing.
func (b *Builder) declare(name string, d *Descriptor) {
	if _, exists := b.fields[name]; !exists {
		b.order = append(b.order, name)
	}
	b.fields[name] = d
}

// declareGroup registers a group, keeping first-declaration order.
func (b *Builder) declareGroup(name string, members []string) {
	if _, exists := b.groups[name]; !exists {
		b.groupOrder = append(b.groupOrder, name)
	}
	b.groups[name] = append([]string(nil), members...)
}

// Build finalizes the schema. All collected declaration errors are
// returned joined; group members are checked against declared fields.
func (b *Builder) Build() (*Schema, error) {
	errs := b.errs
	for _, g := range b.groupOrder {
		for _, member := range b.groups[g] {
			if _, ok := b.fields[member]; !ok {
				errs = append(errs, fmt.Errorf("%w: group %q references undeclared field %q",
					ErrInvalidGroup, g, member))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema %q: %w", b.name, errors.Join(errs...))
	}

	s := &Schema{
		name:       b.name,
		fields:     make(map[string]*Descriptor, len(b.fields)),
		order:      append([]string(nil), b.order...),
		groups:     make(map[string][]string, len(b.groups)),
		groupOrder: append([]string(nil), b.groupOrder...),
		docSources: append(append([]string(nil), b.ownDocs...), b.parentDocs...),
		docCache:   make(map[string]string),
	}
	for name, d := range b.fields {
		s.fields[name] = d
	}
	for name, members := range b.groups {
		s.groups[name] = append([]string(nil), members...)
	}

	// Writable ordering is derived last so shadowing a field with a
	// different capability partitions correctly.
	for _, name := range s.order {
		if s.fields[name].Writable() {
			s.writable = append(s.writable, name)
		}
	}

	return s, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// schema declarations.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema type name.
func (s *Schema) Name() string {
	return s.name
}

// FieldNames returns every declared field name in declaration order.
func (s *Schema) FieldNames() []string {
	return append([]string(nil), s.order...)
}

// WritableNames returns the writable field names in declaration order.
// This ordering defines the positional signature of Device.Set.
func (s *Schema) WritableNames() []string {
	return append([]string(nil), s.writable...)
}

// Descriptor returns the descriptor for a field name.
func (s *Schema) Descriptor(name string) (*Descriptor, bool) {
	d, ok := s.fields[name]
	return d, ok
}

// GroupNames returns every declared group name in declaration order.
func (s *Schema) GroupNames() []string {
	return append([]string(nil), s.groupOrder...)
}

// GroupMembers returns the member field names of a group.
func (s *Schema) GroupMembers(name string) ([]string, bool) {
	members, ok := s.groups[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), members...), true
}

// DocSources returns the documentation tables searched by Doc, in order.
func (s *Schema) DocSources() []string {
	return append([]string(nil), s.docSources...)
}

// Doc returns the documentation string for a field.
//
// An explicit descriptor doc wins; otherwise the schema's documentation
// sources are searched most-derived-first with readback-suffix fallback.
// Lookups are memoized per schema, so the table walk runs once per field.
// Unknown fields yield the resolver's not-found sentinel.
func (s *Schema) Doc(field string) string {
	if d, ok := s.fields[field]; ok && d.Doc() != "" {
		return d.Doc()
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	if doc, ok := s.docCache[field]; ok {
		return doc
	}
	doc := docdb.Lookup(s.docSources, field)
	s.docCache[field] = doc
	return doc
}
