package chunk

// Well-known metadata keys.
const (
	KeyChunkID               = "chunk_id"
	KeyChunkIndex            = "chunk_index"
	KeyContentType           = "content_type"
	KeyHeaderPath            = "header_path"
	KeyAllowOversize         = "allow_oversize"
	KeyOversizeReason        = "oversize_reason"
	KeyDanglingHeaderFixed   = "dangling_header_fixed"
	KeyHeaderMovedFrom       = "header_moved_from"
	KeyMergeReason           = "merge_reason"
	KeyContinuedFromHeader   = "continued_from_header"
	KeySplitIndex            = "split_index"
	KeyOriginalSectionSize   = "original_section_size"
	KeyHeaderPathNeedsUpdate = "header_path_needs_update"
)

// Content types assigned upstream.
const (
	ContentText  = "text"
	ContentCode  = "code"
	ContentTable = "table"
	ContentList  = "list"
	ContentMixed = "mixed"
)

// Oversize reasons.
const (
	ReasonCodeBlockIntegrity = "code_block_integrity"
	ReasonTableIntegrity     = "table_integrity"
	ReasonListItemIntegrity  = "list_item_integrity"
)

// MergeReasonDanglingHeader is recorded on chunks merged to keep a header with its content.
const MergeReasonDanglingHeader = "dangling_header_prevention"

// Metadata is an ordered key/value bag. It is copy-on-write: Set and Delete
// return a new Metadata and never modify the receiver, so two chunks can
// share a Metadata value safely.
type Metadata struct {
	keys []string
	vals map[string]Value
}

// NewMetadata builds Metadata from alternating key, Value pairs.
func NewMetadata(kv ...any) Metadata {
	var m Metadata
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		v, ok := kv[i+1].(Value)
		if !ok {
			v, _ = ValueOf(kv[i+1])
		}
		m = m.Set(k, v)
	}
	return m
}

func (m Metadata) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m Metadata) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Set returns a copy of m with key set to v. Existing keys keep their position.
func (m Metadata) Set(key string, v Value) Metadata {
	out := m.clone(1)
	if _, ok := out.vals[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.vals[key] = v
	return out
}

// Delete returns a copy of m without key.
func (m Metadata) Delete(key string) Metadata {
	if !m.Has(key) {
		return m
	}
	out := m.clone(0)
	delete(out.vals, key)
	for i, k := range out.keys {
		if k == key {
			out.keys = append(out.keys[:i], out.keys[i+1:]...)
			break
		}
	}
	return out
}

// Equal reports whether both bags hold the same keys, order and values.
func (m Metadata) Equal(o Metadata) bool {
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k || !m.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

func (m Metadata) clone(extra int) Metadata {
	out := Metadata{
		keys: make([]string, len(m.keys), len(m.keys)+extra),
		vals: make(map[string]Value, len(m.vals)+extra),
	}
	copy(out.keys, m.keys)
	for k, v := range m.vals {
		out.vals[k] = v
	}
	return out
}

func (m Metadata) str(key string) string {
	s, _ := m.vals[key].AsString()
	return s
}

func (m Metadata) flag(key string) bool {
	b, _ := m.vals[key].AsBool()
	return b
}

func (m Metadata) ChunkID() string     { return m.str(KeyChunkID) }
func (m Metadata) ContentType() string { return m.str(KeyContentType) }
func (m Metadata) HeaderPath() string  { return m.str(KeyHeaderPath) }
func (m Metadata) AllowOversize() bool { return m.flag(KeyAllowOversize) }
func (m Metadata) OversizeReason() string {
	return m.str(KeyOversizeReason)
}
func (m Metadata) DanglingHeaderFixed() bool   { return m.flag(KeyDanglingHeaderFixed) }
func (m Metadata) MergeReason() string         { return m.str(KeyMergeReason) }
func (m Metadata) ContinuedFromHeader() bool   { return m.flag(KeyContinuedFromHeader) }
func (m Metadata) HeaderPathNeedsUpdate() bool { return m.flag(KeyHeaderPathNeedsUpdate) }

// HeaderMovedFrom returns the id of the chunk a header was moved from. The
// second result is false when the key is absent or null.
func (m Metadata) HeaderMovedFrom() (string, bool) {
	return m.vals[KeyHeaderMovedFrom].AsString()
}

// ChunkIndex returns the sequence number, or -1 when unset.
func (m Metadata) ChunkIndex() int {
	if i, ok := m.vals[KeyChunkIndex].AsInt(); ok {
		return i
	}
	return -1
}

// SplitIndex returns the fragment index and whether the chunk is a fragment.
func (m Metadata) SplitIndex() (int, bool) {
	return m.vals[KeySplitIndex].AsInt()
}

func (m Metadata) OriginalSectionSize() (int, bool) {
	return m.vals[KeyOriginalSectionSize].AsInt()
}

func (m Metadata) WithChunkID(id string) Metadata { return m.Set(KeyChunkID, String(id)) }
func (m Metadata) WithChunkIndex(i int) Metadata  { return m.Set(KeyChunkIndex, Int(i)) }
func (m Metadata) WithContentType(t string) Metadata {
	return m.Set(KeyContentType, String(t))
}
func (m Metadata) WithHeaderPath(p string) Metadata { return m.Set(KeyHeaderPath, String(p)) }

// WithOversize marks the chunk as allowed to exceed the size limit.
func (m Metadata) WithOversize(reason string) Metadata {
	return m.Set(KeyAllowOversize, Bool(true)).Set(KeyOversizeReason, String(reason))
}

// WithHeaderMoved records that a dangling header was moved in from chunk id
// from. An empty id is stored as null.
func (m Metadata) WithHeaderMoved(from string) Metadata {
	v := Null()
	if from != "" {
		v = String(from)
	}
	return m.Set(KeyDanglingHeaderFixed, Bool(true)).Set(KeyHeaderMovedFrom, v)
}

// WithMerged records a dangling-header merge.
func (m Metadata) WithMerged(reason string) Metadata {
	return m.Set(KeyDanglingHeaderFixed, Bool(true)).Set(KeyMergeReason, String(reason))
}

// WithFragment records split bookkeeping for a fragment of an oversize chunk.
func (m Metadata) WithFragment(index, originalSize int) Metadata {
	return m.Set(KeyContinuedFromHeader, Bool(index > 0)).
		Set(KeySplitIndex, Int(index)).
		Set(KeyOriginalSectionSize, Int(originalSize))
}

func (m Metadata) WithHeaderPathNeedsUpdate(v bool) Metadata {
	return m.Set(KeyHeaderPathNeedsUpdate, Bool(v))
}
