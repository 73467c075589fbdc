package chunk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_SetIsCopyOnWrite(t *testing.T) {
	base := NewMetadata(KeyChunkID, "c1", KeyContentType, ContentText)
	updated := base.WithOversize(ReasonListItemIntegrity)

	assert.False(t, base.AllowOversize(), "receiver must not change")
	assert.Equal(t, 2, base.Len())
	assert.True(t, updated.AllowOversize())
	assert.Equal(t, ReasonListItemIntegrity, updated.OversizeReason())
	assert.Equal(t, []string{KeyChunkID, KeyContentType, KeyAllowOversize, KeyOversizeReason}, updated.Keys())
}

func TestMetadata_SetKeepsPosition(t *testing.T) {
	m := NewMetadata("a", 1, "b", 2, "c", 3)
	m = m.Set("a", String("x"))
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", v.String())
}

func TestMetadata_Delete(t *testing.T) {
	m := NewMetadata("a", 1, "b", 2)
	d := m.Delete("a")
	assert.Equal(t, []string{"b"}, d.Keys())
	assert.True(t, m.Has("a"))
	assert.Equal(t, d, d.Delete("missing"))
}

func TestMetadata_TypedAccessors(t *testing.T) {
	m := Metadata{}.
		WithChunkID("c7").
		WithFragment(2, 5000).
		WithHeaderMoved("c6").
		WithHeaderPathNeedsUpdate(true)

	assert.Equal(t, "c7", m.ChunkID())
	idx, ok := m.SplitIndex()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	size, ok := m.OriginalSectionSize()
	require.True(t, ok)
	assert.Equal(t, 5000, size)
	assert.True(t, m.ContinuedFromHeader())
	assert.True(t, m.DanglingHeaderFixed())
	from, ok := m.HeaderMovedFrom()
	require.True(t, ok)
	assert.Equal(t, "c6", from)
	assert.True(t, m.HeaderPathNeedsUpdate())
	assert.Equal(t, -1, m.ChunkIndex())
}

func TestMetadata_HeaderMovedFromNull(t *testing.T) {
	m := Metadata{}.WithHeaderMoved("")
	v, ok := m.Get(KeyHeaderMovedFrom)
	require.True(t, ok)
	assert.True(t, v.IsNull())
	_, ok = m.HeaderMovedFrom()
	assert.False(t, ok)
}

func TestMetadata_JSONPreservesOrderAndUnknownKeys(t *testing.T) {
	in := `{"zeta":1,"chunk_id":"abc","ratio":0.5,"flag":true,"none":null,"content_type":"code"}`
	var m Metadata
	require.NoError(t, json.Unmarshal([]byte(in), &m))

	assert.Equal(t, []string{"zeta", KeyChunkID, "ratio", "flag", "none", KeyContentType}, m.Keys())
	assert.Equal(t, ContentCode, m.ContentType())
	v, _ := m.Get("ratio")
	assert.Equal(t, KindFloat, v.Kind())
	v, _ = m.Get("zeta")
	assert.Equal(t, KindInt, v.Kind())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
	assert.Equal(t, in, string(out))
}

func TestMetadata_JSONRejectsNestedValues(t *testing.T) {
	var m Metadata
	err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &m)
	assert.Error(t, err)
	err = json.Unmarshal([]byte(`{"a":[1,2]}`), &m)
	assert.Error(t, err)
}

func TestChunk_Validate(t *testing.T) {
	tests := []struct {
		name string
		c    Chunk
		want error
	}{
		{"valid", Chunk{Content: "x", StartLine: 1, EndLine: 1}, nil},
		{"blank", Chunk{Content: " \n\t", StartLine: 1, EndLine: 2}, ErrEmptyContent},
		{"zero start", Chunk{Content: "x", StartLine: 0, EndLine: 1}, ErrInvalidLineRange},
		{"inverted", Chunk{Content: "x", StartLine: 5, EndLine: 4}, ErrInvalidLineRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.c.Validate(), tt.want)
		})
	}
}

func TestChunk_SizeCountsCharacters(t *testing.T) {
	c := Chunk{Content: "Итоги"}
	assert.Equal(t, 5, c.Size())
	assert.Equal(t, 10, len(c.Content))
}

func TestChunk_WithContentDoesNotAlias(t *testing.T) {
	orig := Chunk{Content: "a", StartLine: 1, EndLine: 1, Metadata: NewMetadata(KeyChunkID, "c1")}
	moved := orig.WithContent("b", 2, 3).WithMetadata(orig.Metadata.WithMerged(MergeReasonDanglingHeader))

	assert.Equal(t, "a", orig.Content)
	assert.False(t, orig.Metadata.DanglingHeaderFixed())
	assert.True(t, moved.Metadata.DanglingHeaderFixed())
	assert.Equal(t, MergeReasonDanglingHeader, moved.Metadata.MergeReason())
	assert.False(t, orig.Equal(moved))
}

func TestChunk_JSONRoundTrip(t *testing.T) {
	c := Chunk{
		Content:   "# Title\n\nBody",
		StartLine: 3,
		EndLine:   5,
		Metadata:  NewMetadata(KeyChunkID, "c1", KeySplitIndex, 0),
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var back Chunk
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, c.Equal(back), "got %+v", back)
}
