// Package schema maps user-facing attribute names to stable field ids and
// tracks which attributes are indexed, displayed, or ranked. It generalizes
// the teacher repository's config.IndexSettings (which stored plain string
// slices) into a bidirectional FieldId/IndexedPos mapping as required by the
// posting-list layout, while keeping the same "named sets of attributes"
// shape the teacher's settings.go exposes.
package schema

import (
	"bytes"
	"encoding/gob"
	"sync"

	ftserrors "github.com/gcbaptista/ftscore/errors"
)

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(b []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

// FieldId stably identifies a user attribute for the lifetime of the index.
type FieldId uint16

// IndexedPos is the position of a field within the ordered set of
// searchable attributes; it is what posting lists actually store so that
// schema changes that merely reorder fields don't require rewriting them
// (reordering is in fact forbidden below, but the indirection stays general).
type IndexedPos uint16

type attribute struct {
	Name       string
	ID         FieldId
	Indexed    bool
	IndexedPos IndexedPos
	Displayed  bool
	Ranked     bool
}

// Schema is the engine's single source of truth for attribute identity. It
// is persisted via gob into the main store, mirroring the teacher's gob
// persistence of IndexSettings.
type Schema struct {
	mu sync.RWMutex

	Identifier string

	attrs      map[string]*attribute
	byID       map[FieldId]*attribute
	byPos      map[IndexedPos]*attribute
	nextID     FieldId
	nextPos    IndexedPos

	IndexNewFields bool
}

type gobSchema struct {
	Identifier     string
	Attrs          []attribute
	NextID         FieldId
	NextPos        IndexedPos
	IndexNewFields bool
}

func init() {
	gob.Register(gobSchema{})
}

// New constructs an empty schema with the given identifier attribute
// (the user's primary-key field name). An identifier is mandatory: the
// settings applier refuses to create a schema without one (ErrMissingIdentifier).
func New(identifier string) *Schema {
	s := Empty()
	s.Identifier = identifier
	s.internAttribute(identifier)
	return s
}

// Empty constructs a schema with no identifier yet set, ready for a later
// SetIdentifier call. This is what a brand-new index starts from before its
// first Settings update establishes an identifier attribute.
func Empty() *Schema {
	return &Schema{
		attrs:          make(map[string]*attribute),
		byID:           make(map[FieldId]*attribute),
		byPos:          make(map[IndexedPos]*attribute),
		IndexNewFields: true,
	}
}

// GobEncode and GobDecode hand-roll the persistence of the unexported maps,
// the way the teacher's InvertedIndex/DocumentStore types hand-roll gob
// codecs around their mutexes.
func (s *Schema) GobEncode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := gobSchema{
		Identifier:     s.Identifier,
		NextID:         s.nextID,
		NextPos:        s.nextPos,
		IndexNewFields: s.IndexNewFields,
	}
	for _, a := range s.byID {
		data.Attrs = append(data.Attrs, *a)
	}
	return gobEncode(data)
}

func (s *Schema) GobDecode(b []byte) error {
	var data gobSchema
	if err := gobDecode(b, &data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Identifier = data.Identifier
	s.nextID = data.NextID
	s.nextPos = data.NextPos
	s.IndexNewFields = data.IndexNewFields
	s.attrs = make(map[string]*attribute)
	s.byID = make(map[FieldId]*attribute)
	s.byPos = make(map[IndexedPos]*attribute)
	for i := range data.Attrs {
		a := data.Attrs[i]
		s.attrs[a.Name] = &a
		s.byID[a.ID] = &a
		if a.Indexed {
			s.byPos[a.IndexedPos] = &a
		}
	}
	return nil
}

func (s *Schema) internAttribute(name string) *attribute {
	if a, ok := s.attrs[name]; ok {
		return a
	}
	a := &attribute{Name: name, ID: s.nextID}
	s.nextID++
	s.attrs[name] = a
	s.byID[a.ID] = a
	return a
}

// ID returns the field id for name, or (0, false) if name is not in the
// schema. It never creates an attribute; EnsureID does.
func (s *Schema) ID(name string) (FieldId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attrs[name]
	if !ok {
		return 0, false
	}
	return a.ID, true
}

// EnsureID returns the field id for name, interning a new attribute when
// absent and IndexNewFields is set; otherwise the field is silently
// unrepresentable and (0, false) is returned.
func (s *Schema) EnsureID(name string) (FieldId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attrs[name]; ok {
		return a.ID, true
	}
	if !s.IndexNewFields {
		return 0, false
	}
	a := s.internAttribute(name)
	return a.ID, true
}

// Name resolves a field id back to its attribute name.
func (s *Schema) Name(id FieldId) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return "", false
	}
	return a.Name, true
}

// IndexedPosToFieldID translates a posting-list IndexedPos back to the
// schema's current FieldId, following a schema change that may have
// appended new searchable attributes but never reordered existing ones.
func (s *Schema) IndexedPosToFieldID(pos IndexedPos) (FieldId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byPos[pos]
	if !ok {
		return 0, false
	}
	return a.ID, true
}

// IndexedAttributes returns field names in IndexedPos order.
func (s *Schema) IndexedAttributes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.byPos))
	for pos, a := range s.byPos {
		out[int(pos)] = a.Name
	}
	return out
}

// DisplayedAttributes returns the set of attribute names flagged displayed.
func (s *Schema) DisplayedAttributes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, a := range s.attrs {
		if a.Displayed {
			out = append(out, a.Name)
		}
	}
	return out
}

// RankedAttributes returns the set of attribute names flagged ranked.
func (s *Schema) RankedAttributes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, a := range s.attrs {
		if a.Ranked {
			out = append(out, a.Name)
		}
	}
	return out
}

// UpdateIndexed replaces the ordered set of searchable attributes. Existing
// entries must remain, in the same relative order, as a prefix of the new
// list (§4.1): appends are the only legal diff. Clearing to an empty list
// is accepted only while no attribute is indexed yet; otherwise it fails
// with CannotRemoveSchemaAttribute like any other removal.
func (s *Schema) UpdateIndexed(orderedNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// validate: existing indexed prefix must be preserved verbatim.
	existing := make([]string, len(s.byPos))
	for pos, a := range s.byPos {
		existing[int(pos)] = a.Name
	}
	if len(orderedNames) < len(existing) {
		return ftserrors.NewUnsupportedOperationError(ftserrors.CannotRemoveSchemaAttribute, "")
	}
	for i, name := range existing {
		if i >= len(orderedNames) || orderedNames[i] != name {
			return ftserrors.NewUnsupportedOperationError(ftserrors.CannotReorderSchemaAttribute, name)
		}
	}

	s.byPos = make(map[IndexedPos]*attribute)
	for i, name := range orderedNames {
		a := s.internAttribute(name)
		a.Indexed = true
		a.IndexedPos = IndexedPos(i)
		s.byPos[IndexedPos(i)] = a
	}
	// names no longer in orderedNames beyond the preserved prefix simply
	// never occur since length only grows; nothing to unmark here.
	if len(orderedNames) > len(existing) {
		s.nextPos = IndexedPos(len(orderedNames))
	}
	return nil
}

// UpdateDisplayed replaces the set of displayed attribute names.
func (s *Schema) UpdateDisplayed(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attrs {
		a.Displayed = false
	}
	for _, name := range names {
		s.internAttribute(name).Displayed = true
	}
	return nil
}

// UpdateRanked replaces the set of ranked attribute names.
func (s *Schema) UpdateRanked(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attrs {
		a.Ranked = false
	}
	for _, name := range names {
		s.internAttribute(name).Ranked = true
	}
	return nil
}

// SetIdentifier sets the schema's identifier attribute. Changing an
// already-set identifier to a different value is illegal.
func (s *Schema) SetIdentifier(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Identifier != "" && s.Identifier != name {
		return ftserrors.NewUnsupportedOperationError(ftserrors.CannotUpdateSchemaIdentifier, name)
	}
	s.Identifier = name
	s.internAttribute(name)
	return nil
}

func (s *Schema) SetIndexNewFields(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IndexNewFields = v
}
