package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

func TestWriteAndReadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")
	records := []json.RawMessage{
		json.RawMessage(`{"id":1,"path":"/a/"}`),
		json.RawMessage(`{"id":2,"path":"/b/"}`),
	}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1,\"path\":\"/a/\"}\n{\"id\":2,\"path\":\"/b/\"}\n", string(data))

	got, err := readJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".jsonl-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files must be renamed away")
}

func TestReadJSONLSkipsEmptyAndMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")
	content := "{\"id\":1}\n\n{invalid json here\n{\"id\":2}\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := readJSONL(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadJSONLLongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")
	text := strings.Repeat("x", types.MaxCommentBytes)
	rec, err := json.Marshal(commentJSON{ID: 1, Text: text})
	require.NoError(t, err)
	require.NoError(t, writeJSONL(path, []json.RawMessage{rec}))

	got, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, got, 1)

	var back commentJSON
	require.NoError(t, json.Unmarshal(got[0], &back))
	assert.Equal(t, text, back.Text)
}

func TestExportImportRoundTrip(t *testing.T) {
	f := setupFixture(t, "markdown")
	_, err := f.b.SaveUser("ada", "ada@example.com")
	require.NoError(t, err)
	root := f.add(t, 0, types.StatusApproved, "root")
	f.add(t, root, types.StatusPending, "reply\n\nwith paragraphs")

	dir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, f.b.Export(dir))
	for _, m := range jsonlTableMapping {
		_, err := os.Stat(filepath.Join(dir, m.file))
		assert.NoError(t, err, "%s must be written", m.file)
	}

	cfg := testConfig(t)
	fresh := attachBackend(t, cfg)
	n, err := fresh.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, 1+1+2+2, n, "page, field, guest and ada, two comments")

	a, err := fresh.LoadComments(f.pageID, f.fieldID)
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())
	reply := a.At(1)
	assert.Equal(t, "reply\n\nwith paragraphs", reply.Text())
	assert.Equal(t, types.StatusPending, reply.Status())
	assert.Same(t, a.At(0), reply.Parent())

	fld, ok := fresh.Field(f.fieldID)
	require.True(t, ok)
	assert.Equal(t, []string{"markdown"}, fld.TextFormatters())

	src, err := f.b.Comment(root)
	require.NoError(t, err)
	dst, err := fresh.Comment(root)
	require.NoError(t, err)
	assert.Equal(t, src.Code(), dst.Code())
}

func TestImportIsIdempotent(t *testing.T) {
	f := setupFixture(t)
	f.add(t, 0, types.StatusApproved, "only")
	dir := t.TempDir()
	require.NoError(t, f.b.Export(dir))

	_, err := f.b.Import(dir)
	require.NoError(t, err)
	_, err = f.b.Import(dir)
	require.NoError(t, err)

	a, err := f.b.LoadComments(f.pageID, f.fieldID)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())
}

func TestImportToleratesUnknownAndMissing(t *testing.T) {
	b := setupBackend(t)
	dir := t.TempDir()

	comments := `{"id":7,"pages_id":1,"fields_id":1,"text":"hi","created":100,"future_column":"ignored"}
not json
{"id":8,"pages_id":1,"fields_id":1,"parent_id":7,"text":"reply","created":200,"status":1}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comments.jsonl"), []byte(comments), 0644))

	n, err := b.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c, err := b.Comment(8)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, c.Status())
	assert.Equal(t, 7, c.Parent().ID())
	assert.Equal(t, 0, c.Parent().Stars(), "missing columns take their defaults")
}

func TestImportInvalidatesUserCache(t *testing.T) {
	b := setupBackend(t)
	id, err := b.SaveUser("ada", "old@example.com")
	require.NoError(t, err)
	_, err = b.User(id)
	require.NoError(t, err)

	dir := t.TempDir()
	rec, err := json.Marshal(userJSON{ID: id, Name: "ada", Email: "new@example.com"})
	require.NoError(t, err)
	require.NoError(t, writeJSONL(filepath.Join(dir, "users.jsonl"), []json.RawMessage{rec}))

	_, err = b.Import(dir)
	require.NoError(t, err)
	u, err := b.User(id)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email())
}
