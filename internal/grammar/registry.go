package grammar

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

type versionKey struct {
	dialect edi.Dialect
	version string
}

// Registry holds the grammar of every registered dialect version.
//
// Register* methods are only used while building; after that the registry is
// read-only and safe for concurrent use.
type Registry struct {
	segments  map[versionKey]map[string]*SegmentDef
	tables    map[TableKey]*TransactionSchema
	codeLists map[string]*CodeList
	profiles  map[string]*Profile
	defaults  map[edi.Dialect]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		segments:  make(map[versionKey]map[string]*SegmentDef),
		tables:    make(map[TableKey]*TransactionSchema),
		codeLists: make(map[string]*CodeList),
		profiles:  make(map[string]*Profile),
		defaults:  make(map[edi.Dialect]string),
	}
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the registry with every table shipped with the codec.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r := NewRegistry()
		registerCodeLists(r)
		registerX12(r)
		registerEDIFACT(r)
		registerProfiles(r)
		builtin = r
	})
	return builtin
}

// =============================================================================
// REGISTRATION
// =============================================================================

// SetDefaultVersion sets the version used when a document's version is not
// registered.
func (r *Registry) SetDefaultVersion(d edi.Dialect, version string) {
	r.defaults[d] = version
}

// RegisterSegments adds segment definitions for a dialect version.
func (r *Registry) RegisterSegments(d edi.Dialect, version string, defs ...*SegmentDef) {
	k := versionKey{d, version}
	m, ok := r.segments[k]
	if !ok {
		m = make(map[string]*SegmentDef)
		r.segments[k] = m
	}
	for _, def := range defs {
		m[def.ID] = def
	}
	if _, ok := r.defaults[d]; !ok {
		r.defaults[d] = version
	}
}

// RegisterTransaction adds a transaction table. Its segments must already be
// registered for the same dialect version.
func (r *Registry) RegisterTransaction(s *TransactionSchema) error {
	segs := r.segments[versionKey{s.Key.Dialect, s.Key.Version}]
	for _, u := range s.Body {
		if _, ok := segs[u.ID]; !ok {
			return fmt.Errorf("transaction %s %s: segment %s not registered for version %s",
				s.Key.Dialect, s.Key.TransactionID, u.ID, s.Key.Version)
		}
	}
	r.tables[s.Key] = s
	return nil
}

// RegisterCodeList adds a qualifier code list.
func (r *Registry) RegisterCodeList(c *CodeList) {
	r.codeLists[c.Name] = c
}

// RegisterProfile adds an industry rule set.
func (r *Registry) RegisterProfile(p *Profile) {
	r.profiles[p.Name] = p
}

// =============================================================================
// LOOKUP
// =============================================================================

// DefaultVersion returns the fallback version of a dialect.
func (r *Registry) DefaultVersion(d edi.Dialect) string {
	return r.defaults[d]
}

// Versions lists the registered versions of a dialect.
func (r *Registry) Versions(d edi.Dialect) []string {
	var out []string
	for k := range r.segments {
		if k.dialect == d {
			out = append(out, k.version)
		}
	}
	sort.Strings(out)
	return out
}

// HasVersion reports whether the exact version is registered.
func (r *Registry) HasVersion(d edi.Dialect, version string) bool {
	_, ok := r.segments[versionKey{d, version}]
	return ok
}

func (r *Registry) resolve(d edi.Dialect, version string) string {
	if r.HasVersion(d, version) {
		return version
	}
	return r.defaults[d]
}

// Segment returns a segment definition, falling back to the default version.
func (r *Registry) Segment(d edi.Dialect, version, id string) (*SegmentDef, bool) {
	def, ok := r.segments[versionKey{d, r.resolve(d, version)}][id]
	return def, ok
}

// Transaction returns a transaction table, falling back to the default version.
func (r *Registry) Transaction(d edi.Dialect, version, id string) (*TransactionSchema, bool) {
	s, ok := r.tables[TableKey{Dialect: d, Version: r.resolve(d, version), TransactionID: id}]
	return s, ok
}

// CodeList returns a qualifier code list.
func (r *Registry) CodeList(name string) (*CodeList, bool) {
	c, ok := r.codeLists[name]
	return c, ok
}

// Profile returns an industry rule set.
func (r *Registry) Profile(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Profiles lists registered profile names.
func (r *Registry) Profiles() []string {
	out := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
